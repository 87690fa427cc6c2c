package redis

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/redis/go-redis/v9"

	"github.com/queuejw/messenger/internal/core/domain"
)

const (
	defaultPrefix = "messenger"
	scanBatch     = 100
)

// Backend keeps one string key per record.
// Key format: <prefix>:<kind>:<id>
type Backend struct {
	client *redis.Client
	prefix string
}

func NewBackend(client *redis.Client, prefix string) *Backend {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Backend{client: client, prefix: prefix}
}

func (b *Backend) Name() string { return "redis" }

// Insert uses SET NX so a second create for the same id loses.
func (b *Backend) Insert(ctx context.Context, kind, id string, data []byte) error {
	ok, err := b.client.SetNX(ctx, b.key(kind, id), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis set %s: %w", kind, err)
	}
	if !ok {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (b *Backend) Read(ctx context.Context, kind, id string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", kind, err)
	}
	return data, nil
}

func (b *Backend) Exists(ctx context.Context, kind, id string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(kind, id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", kind, err)
	}
	return n > 0, nil
}

// Scan walks the keyspace with SCAN; keys deleted between SCAN and GET are skipped.
func (b *Backend) Scan(ctx context.Context, kind string) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		it := b.client.Scan(ctx, 0, b.key(kind, "*"), scanBatch).Iterator()
		for it.Next(ctx) {
			data, err := b.client.Get(ctx, it.Val()).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				err = fmt.Errorf("redis get %s: %w", kind, err)
			}
			if !yield(data, err) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, fmt.Errorf("redis scan %s: %w", kind, err))
		}
	}
}

func (b *Backend) Remove(ctx context.Context, kind, id string) error {
	if err := b.client.Del(ctx, b.key(kind, id)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", kind, err)
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Backend) Close(_ context.Context) error {
	return b.client.Close()
}

func (b *Backend) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", b.prefix, kind, id)
}
