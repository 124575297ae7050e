package utils

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/xid"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewClientMsgID genera un identificador corto para correlacionar
// requests y responses del broker (clientMsgId del envelope).
//
// Example:
//
//	id := utils.NewClientMsgID()
//	// => "cn8q0h3p9o4g00a8sj0g"
func NewClientMsgID() string {
	return xid.New().String()
}

// NewEventIDAt genera un ULID monotónico para el instante dado.
//
// Los ULID ordenan lexicográficamente por tiempo, por lo que sirven como
// clave de un log append-only en un key-value ordenado.
func NewEventIDAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
