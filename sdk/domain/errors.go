package domain

import (
	"errors"
	"fmt"
)

// ErrorCode representa un código de error del dominio del gateway.
type ErrorCode string

// Códigos de error estándar
const (
	ErrNoError ErrorCode = "NO_ERROR"

	// Errores de validación
	ErrInvalidVolume        ErrorCode = "INVALID_VOLUME"
	ErrInvalidSymbol        ErrorCode = "INVALID_SYMBOL"
	ErrMissingRequiredField ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrSpecMissing          ErrorCode = "SPEC_MISSING"

	// Errores de broker
	ErrBrokerNotReady    ErrorCode = "BROKER_NOT_READY"
	ErrHandshakeRejected ErrorCode = "HANDSHAKE_REJECTED"
	ErrOrderRejected     ErrorCode = "ORDER_REJECTED"
	ErrServerDisconnect  ErrorCode = "SERVER_DISCONNECT"
	ErrBrokerUnreachable ErrorCode = "BROKER_UNREACHABLE"
	ErrEngineUnreachable ErrorCode = "ENGINE_UNREACHABLE"
	ErrTokenInvalidated  ErrorCode = "TOKEN_INVALIDATED"
	ErrHandshakeTimeout  ErrorCode = "HANDSHAKE_TIMEOUT"

	// Errores de sistema
	ErrUnknown         ErrorCode = "UNKNOWN"
	ErrConnectionLost  ErrorCode = "CONNECTION_LOST"
	ErrDuplicateAdvice ErrorCode = "DUPLICATE_ADVICE"
	ErrNotFound        ErrorCode = "NOT_FOUND"
)

// TradingError representa un error del dominio con contexto.
type TradingError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implementa la interfaz error.
func (e *TradingError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implementa la interfaz errors.Unwrap.
func (e *TradingError) Unwrap() error {
	return e.Wrapped
}

// WithDetail agrega un detalle al error.
func (e *TradingError) WithDetail(key string, value interface{}) *TradingError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewError crea un nuevo TradingError.
//
// Example:
//
//	err := domain.NewError(domain.ErrInvalidSymbol, "ticker XAUUSD not indexed")
func NewError(code ErrorCode, message string) *TradingError {
	return &TradingError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError envuelve un error existente con contexto de dominio.
func WrapError(code ErrorCode, message string, wrapped error) *TradingError {
	return &TradingError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: wrapped,
	}
}

// CodeOf extrae el ErrorCode de una cadena de errores.
//
// Un FatalError tiene prioridad sobre los TradingError que envuelve. Sin
// ninguno de los dos retorna ErrUnknown.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrNoError
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.Code
	}
	var te *TradingError
	if errors.As(err, &te) {
		return te.Code
	}
	return ErrUnknown
}

// FatalError señala una condición irrecuperable.
//
// Lo produce el core (handshake rechazado, desconexión del servidor, broker
// inalcanzable) y lo consume el supervisor, que decide el ciclo de vida del proceso.
type FatalError struct {
	Code    ErrorCode
	Reason  string
	Wrapped error
}

func (e *FatalError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("fatal [%s] %s: %v", e.Code, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("fatal [%s] %s", e.Code, e.Reason)
}

func (e *FatalError) Unwrap() error {
	return e.Wrapped
}

// NewFatalError crea un FatalError.
func NewFatalError(code ErrorCode, reason string, wrapped error) *FatalError {
	return &FatalError{Code: code, Reason: reason, Wrapped: wrapped}
}

// IsFatalError indica si la cadena de errores contiene un *FatalError.
func IsFatalError(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
