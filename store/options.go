package store

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultKey is the storage key the diagram collection is written under.
const DefaultKey = "nodeboard:diagrams"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithInitialDiagram activates the diagram with this id on construction, if
// it exists in the persisted collection.
func WithInitialDiagram(id string) Option {
	return func(s *Store) {
		s.initialID = id
	}
}

// WithClock replaces the time source used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator replaces the id source for diagrams, nodes and connections.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

func defaultClock() time.Time {
	// UTC drops the monotonic reading so timestamps survive a JSON round trip.
	return time.Now().UTC()
}

func defaultID() string {
	return uuid.NewString()
}
