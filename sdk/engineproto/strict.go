package engineproto

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// object es un objeto JSON con sus valores todavía sin decodificar.
type object struct {
	prefix string
	fields map[string]json.RawMessage
}

func parseObject(prefix string, raw []byte) (object, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return object{}, violation(prefix, "empty message")
	}
	if raw[0] != '{' {
		return object{}, violation(prefix, "expected JSON object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return object{}, violation(prefix, "invalid JSON: %v", err)
	}
	return object{prefix: prefix, fields: fields}, nil
}

func (o object) path(field string) string {
	if o.prefix == "" {
		return field
	}
	return o.prefix + "." + field
}

// value retorna el valor crudo de un campo requerido y no nulo.
func (o object) value(field string) (json.RawMessage, error) {
	raw, ok := o.fields[field]
	if !ok {
		return nil, violation(o.path(field), "missing")
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, violation(o.path(field), "must not be null")
	}
	return raw, nil
}

func (o object) has(field string) bool {
	_, ok := o.fields[field]
	return ok
}

func (o object) string(field string) (string, error) {
	raw, err := o.value(field)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", violation(o.path(field), "expected string")
	}
	return s, nil
}

func (o object) number(field string) (float64, error) {
	raw, err := o.value(field)
	if err != nil {
		return 0, err
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, violation(o.path(field), "expected number")
	}
	return f, nil
}

func (o object) integer(field string) (int64, error) {
	raw, err := o.value(field)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, violation(o.path(field), "expected integer")
	}
	return n, nil
}

func (o object) strings(field string) ([]string, error) {
	raw, err := o.value(field)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, violation(o.path(field), "expected array of strings")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil || bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			return nil, violation(fmt.Sprintf("%s[%d]", o.path(field), i), "expected string")
		}
		out = append(out, s)
	}
	return out, nil
}

func (o object) objects(field string) ([]object, error) {
	raw, err := o.value(field)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, violation(o.path(field), "expected array")
	}
	out := make([]object, 0, len(items))
	for i, item := range items {
		obj, err := parseObject(fmt.Sprintf("%s[%d]", o.path(field), i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}
