package domain

import (
	"fmt"
	"strings"
)

// ValidationError representa un error de validación.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implementa la interfaz error.
func (v *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", v.Field, v.Value, v.Message)
}

// NewValidationError crea un nuevo ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NormalizeTicker normaliza un ticker (trim + mayúsculas).
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ValidateInstruments valida la lista de tickers configurada.
//
// Reglas: al menos uno, sin vacíos, sin duplicados tras normalizar.
func ValidateInstruments(tickers []string) error {
	if len(tickers) == 0 {
		return NewValidationError("instruments", tickers, "at least one instrument required")
	}
	seen := make(map[string]struct{}, len(tickers))
	for _, raw := range tickers {
		t := NormalizeTicker(raw)
		if t == "" {
			return NewValidationError("instruments", raw, "ticker cannot be empty")
		}
		if _, dup := seen[t]; dup {
			return NewValidationError("instruments", raw, "duplicated ticker")
		}
		seen[t] = struct{}{}
	}
	return nil
}
