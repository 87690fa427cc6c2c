// Package entity implements typed entity collections on top of a byte-level
// storage backend. A collection binds one entity kind ("users", "messages", ...)
// to a Go type and encodes records as JSON.
package entity

import (
	"context"
	"iter"
)

// Backend stores opaque records grouped by kind and addressed by id.
//
// Implementations return domain.ErrAlreadyExists from Insert when the id is
// taken and domain.ErrNotFound from Read when it is absent. Any other error is
// treated as an I/O failure by Collection.
type Backend interface {
	Name() string
	Insert(ctx context.Context, kind, id string, data []byte) error
	Read(ctx context.Context, kind, id string) ([]byte, error)
	Exists(ctx context.Context, kind, id string) (bool, error)
	Scan(ctx context.Context, kind string) iter.Seq2[[]byte, error]
	Remove(ctx context.Context, kind, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
