package storage

import (
	"fmt"
	"io"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Open creates the named backend. path is the database file for sqlite and
// the directory for file; memory ignores it. The returned closer releases
// the backend and is never nil.
func Open(backend, path string) (Blob, io.Closer, error) {
	switch backend {
	case BackendSQLite:
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case BackendFile:
		f, err := NewFile(path)
		if err != nil {
			return nil, nil, err
		}
		return f, nopCloser{}, nil
	case BackendMemory:
		return NewMemory(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
