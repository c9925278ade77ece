// Package archive stores capture artifacts (text logs, interchange
// documents) under stable names.
package archive

import (
	"context"
	"os"
)

// ErrNotFound is returned when an artifact does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for archiving immutable capture artifacts.
type Store interface {
	// Put writes an artifact atomically under the given name.
	Put(ctx context.Context, name string, data []byte) error
	// Get reads an artifact back.
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns all artifact names matching the prefix, unordered.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes an artifact. Deleting an absent name is not an error.
	Delete(ctx context.Context, name string) error
}
