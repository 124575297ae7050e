package engineproto

import (
	"errors"
	"fmt"
)

// ProtocolViolation describe un mensaje del engine que no cumple el protocolo.
type ProtocolViolation struct {
	Field  string
	Reason string
}

func (v *ProtocolViolation) Error() string {
	if v.Field == "" {
		return "protocol violation: " + v.Reason
	}
	return fmt.Sprintf("protocol violation: field '%s': %s", v.Field, v.Reason)
}

func violation(field, format string, args ...interface{}) *ProtocolViolation {
	return &ProtocolViolation{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AsViolation extrae la violación de una cadena de errores.
func AsViolation(err error) (*ProtocolViolation, bool) {
	var v *ProtocolViolation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
