package transport

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// BrokerMaxAttempts es el número de reconexiones fallidas toleradas hacia el broker.
	BrokerMaxAttempts = 3000
	// EngineMaxAttempts es el número de reconexiones fallidas toleradas hacia el engine.
	EngineMaxAttempts = 10
	// EngineRetryDelay es el delay fijo entre reconexiones al engine.
	EngineRetryDelay = time.Second
)

// BrokerDelay retorna la espera antes del intento n (1-based).
//
//	1-9   → 5s
//	10-59 → 25s
//	≥60   → 60s
func BrokerDelay(attempt int) time.Duration {
	switch {
	case attempt < 10:
		return 5 * time.Second
	case attempt < 60:
		return 25 * time.Second
	default:
		return 60 * time.Second
	}
}

// steppedBackOff implementa backoff.BackOff con la escalera de BrokerDelay.
type steppedBackOff struct {
	attempt int
}

func (b *steppedBackOff) NextBackOff() time.Duration {
	b.attempt++
	return BrokerDelay(b.attempt)
}

func (b *steppedBackOff) Reset() {
	b.attempt = 0
}

// NewBrokerPolicy crea la política de reconexión del broker.
//
// Las llamadas 1..3000 a NextBackOff retornan la escalera; la 3001 retorna
// backoff.Stop.
func NewBrokerPolicy() backoff.BackOff {
	return backoff.WithMaxRetries(&steppedBackOff{}, BrokerMaxAttempts)
}

// NewEnginePolicy crea la política de reconexión del engine: 1s fijo, 10 intentos.
func NewEnginePolicy() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(EngineRetryDelay), EngineMaxAttempts)
}
