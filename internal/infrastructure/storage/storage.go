// internal/infrastructure/storage/storage.go
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key holds no value
var ErrNotFound = errors.New("storage: key not found")

// Storage is a durable key/value space. Writes are synchronous: once Set
// returns nil the value survives a restart of the storefront.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// prefixed scopes every key of a backend under a fixed prefix
type prefixed struct {
	backend Storage
	prefix  string
}

// WithPrefix returns a Storage whose keys all live under prefix in backend
func WithPrefix(backend Storage, prefix string) Storage {
	return &prefixed{backend: backend, prefix: prefix}
}

// ForSession returns the durable local storage of one browser session
func ForSession(backend Storage, sessionID string) Storage {
	return WithPrefix(backend, "session:"+sessionID+":")
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.backend.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.backend.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.backend.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Ping(ctx context.Context) error {
	return p.backend.Ping(ctx)
}
