package ports

import (
	"context"
	"iter"
)

// EntityStore persists records of a single entity kind, one record per id.
type EntityStore[T any] interface {
	// Create writes record under id. It fails with domain.ErrAlreadyExists when
	// the id is already present and never overwrites an existing record.
	Create(ctx context.Context, id string, record *T) error
	// Get returns domain.ErrNotFound when no record exists for id.
	Get(ctx context.Context, id string) (*T, error)
	// All enumerates every record of the kind. The sequence is lazy, unordered and
	// can be ranged over repeatedly; each pass reflects the current contents.
	All(ctx context.Context) iter.Seq2[*T, error]
	// Find is All restricted to records matching pred.
	Find(ctx context.Context, pred func(*T) bool) iter.Seq2[*T, error]
	// NewID draws random identifiers until it finds one not in use.
	NewID(ctx context.Context) (string, error)
	// Delete removes the record for id. Missing records are not an error.
	Delete(ctx context.Context, id string) error
}

// CredentialCipher turns plaintext credentials into opaque text tokens and back.
type CredentialCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}
