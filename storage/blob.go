// Package storage provides the local key-value backends diagrams are
// persisted to. Every backend stores opaque byte blobs under string keys.
package storage

import "errors"

// Common errors
var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrClosed        = errors.New("storage is closed")
)

// Blob is the narrow read/write capability the diagram store depends on.
//
// Get reports ok=false with a nil error when the key has never been written.
type Blob interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
}
