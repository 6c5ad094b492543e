// Package storage persists templates. The core only ever talks to the
// key/value Adapter interface; failures from an adapter are opaque errors
// the caller propagates. The bundled FileStore keeps one file per key under
// a root directory.
package storage

import "context"

// Adapter is the key/value persistence boundary. Implementations may be
// backed by anything; the core awaits them through context and treats their
// errors as opaque.
type Adapter interface {
	// Get returns the value for key; found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}
