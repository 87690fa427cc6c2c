package entity

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/queuejw/messenger/internal/core/domain"
	"github.com/queuejw/messenger/internal/core/ports"
)

// IDFunc produces a candidate identifier. Candidates are checked for
// uniqueness by Collection.NewID, so collisions only cost a retry.
type IDFunc func() string

// ShortID returns the first 8 hex characters of a random UUID.
func ShortID() string {
	return uuid.NewString()[:8]
}

// LongID returns a full random UUID.
func LongID() string {
	return uuid.NewString()
}

// Observer is notified after every backend operation.
type Observer func(backend, kind, op string, elapsed time.Duration, err error)

// Option configures a Collection.
type Option func(*options)

type options struct {
	newID    IDFunc
	observer Observer
}

// WithIDFunc overrides the identifier generator (ShortID by default).
func WithIDFunc(fn IDFunc) Option {
	return func(o *options) { o.newID = fn }
}

// WithObserver installs a per-operation hook, typically for metrics.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Collection is a ports.EntityStore for one entity kind.
type Collection[T any] struct {
	backend  Backend
	kind     string
	newID    IDFunc
	observer Observer
}

var _ ports.EntityStore[domain.User] = (*Collection[domain.User])(nil)

// NewCollection binds kind on backend to the record type T.
func NewCollection[T any](backend Backend, kind string, opts ...Option) *Collection[T] {
	o := options{newID: ShortID}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T]{
		backend:  backend,
		kind:     kind,
		newID:    o.newID,
		observer: o.observer,
	}
}

// Kind returns the entity kind this collection is bound to.
func (c *Collection[T]) Kind() string {
	return c.kind
}

// Create encodes record and inserts it under id.
func (c *Collection[T]) Create(ctx context.Context, id string, record *T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return domain.NewStorageError("encode", c.kind, id, err)
	}

	start := time.Now()
	err = c.backend.Insert(ctx, c.kind, id, data)
	c.observe("create", start, err)

	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return err
		}
		return domain.NewStorageError("create", c.kind, id, err)
	}
	return nil
}

// Get reads and decodes the record stored under id.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	start := time.Now()
	data, err := c.backend.Read(ctx, c.kind, id)
	c.observe("get", start, err)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.NewStorageError("get", c.kind, id, err)
	}

	var rec T
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, domain.NewStorageError("decode", c.kind, id, err)
	}
	return &rec, nil
}

// All decodes every record of the kind. A record that cannot be decoded is
// reported as an error and the scan moves on if the consumer keeps ranging.
// A backend failure ends the sequence.
func (c *Collection[T]) All(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		start := time.Now()
		var scanErr error
		defer func() { c.observe("scan", start, scanErr) }()

		for data, err := range c.backend.Scan(ctx, c.kind) {
			if err != nil {
				scanErr = err
				yield(nil, domain.NewStorageError("scan", c.kind, "", err))
				return
			}

			var rec T
			if err := json.Unmarshal(data, &rec); err != nil {
				if !yield(nil, domain.NewStorageError("decode", c.kind, "", err)) {
					return
				}
				continue
			}
			if !yield(&rec, nil) {
				return
			}
		}
	}
}

// Find yields the records for which pred returns true. Errors are passed through.
func (c *Collection[T]) Find(ctx context.Context, pred func(*T) bool) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		for rec, err := range c.All(ctx) {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if pred(rec) && !yield(rec, nil) {
				return
			}
		}
	}
}

// NewID keeps drawing candidates until one is unused.
func (c *Collection[T]) NewID(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		id := c.newID()
		start := time.Now()
		exists, err := c.backend.Exists(ctx, c.kind, id)
		c.observe("exists", start, err)
		if err != nil {
			return "", domain.NewStorageError("exists", c.kind, id, err)
		}
		if !exists {
			return id, nil
		}
	}
}

// Delete removes the record under id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := c.backend.Remove(ctx, c.kind, id)
	c.observe("delete", start, err)
	if err != nil {
		return domain.NewStorageError("delete", c.kind, id, err)
	}
	return nil
}

func (c *Collection[T]) observe(op string, start time.Time, err error) {
	if c.observer == nil {
		return
	}
	c.observer(c.backend.Name(), c.kind, op, time.Since(start), err)
}
