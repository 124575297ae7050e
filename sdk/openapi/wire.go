package openapi

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ---- encoding ----

func appendUvarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	return appendUvarint(b, num, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendUvarint(b, num, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendDouble(b []byte, num protowire.Number, f float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(f))
}

// marshaler lo implementan mensajes y sub-mensajes.
type marshaler interface {
	MarshalPayload() []byte
}

func appendMessage(b []byte, num protowire.Number, m marshaler) []byte {
	return appendBytes(b, num, m.MarshalPayload())
}

// Variantes opcionales: omiten el valor cero (campo ausente en proto2).

func appendOptInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	return appendInt64(b, num, v)
}

func appendOptString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	return appendString(b, num, s)
}

func appendOptDouble(b []byte, num protowire.Number, f float64) []byte {
	if f == 0 {
		return b
	}
	return appendDouble(b, num, f)
}

// ---- decoding ----

// field es un campo ya separado del buffer.
type field struct {
	num   protowire.Number
	typ   protowire.Type
	ivar  uint64
	bytes []byte
}

// rangeFields recorre los campos de b. Los grupos se saltan.
func rangeFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.ivar, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.ivar, n = protowire.ConsumeFixed64(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.ivar = uint64(v)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) expect(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: unexpected wire type %d", f.num, f.typ)
	}
	return nil
}

func (f field) int64(dst *int64) error {
	if err := f.expect(protowire.VarintType); err != nil {
		return err
	}
	*dst = int64(f.ivar)
	return nil
}

func (f field) uint64(dst *uint64) error {
	if err := f.expect(protowire.VarintType); err != nil {
		return err
	}
	*dst = f.ivar
	return nil
}

func (f field) uint32(dst *uint32) error {
	if err := f.expect(protowire.VarintType); err != nil {
		return err
	}
	*dst = uint32(f.ivar)
	return nil
}

func (f field) int32(dst *int32) error {
	if err := f.expect(protowire.VarintType); err != nil {
		return err
	}
	*dst = int32(f.ivar)
	return nil
}

func (f field) bool(dst *bool) error {
	if err := f.expect(protowire.VarintType); err != nil {
		return err
	}
	*dst = protowire.DecodeBool(f.ivar)
	return nil
}

func (f field) double(dst *float64) error {
	if err := f.expect(protowire.Fixed64Type); err != nil {
		return err
	}
	*dst = math.Float64frombits(f.ivar)
	return nil
}

func (f field) string(dst *string) error {
	if err := f.expect(protowire.BytesType); err != nil {
		return err
	}
	*dst = string(f.bytes)
	return nil
}

// appendInt64s acepta la forma empaquetada y la no empaquetada.
func (f field) appendInt64s(dst *[]int64) error {
	switch f.typ {
	case protowire.VarintType:
		*dst = append(*dst, int64(f.ivar))
		return nil
	case protowire.BytesType:
		b := f.bytes
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("field %d: %w", f.num, protowire.ParseError(n))
			}
			*dst = append(*dst, int64(v))
			b = b[n:]
		}
		return nil
	default:
		return fmt.Errorf("field %d: unexpected wire type %d", f.num, f.typ)
	}
}

// unmarshaler lo implementan mensajes y sub-mensajes.
type unmarshaler interface {
	UnmarshalPayload([]byte) error
}

func (f field) message(dst unmarshaler) error {
	if err := f.expect(protowire.BytesType); err != nil {
		return err
	}
	if err := dst.UnmarshalPayload(f.bytes); err != nil {
		return fmt.Errorf("field %d: %w", f.num, err)
	}
	return nil
}
