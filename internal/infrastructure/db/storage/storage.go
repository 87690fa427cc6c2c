// Package storage opens the entity backend selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/queuejw/messenger/internal/infrastructure/db/entity"
	"github.com/queuejw/messenger/internal/infrastructure/db/filestore"
	"github.com/queuejw/messenger/internal/infrastructure/db/memory"
	mongostore "github.com/queuejw/messenger/internal/infrastructure/db/mongo"
	redisstore "github.com/queuejw/messenger/internal/infrastructure/db/redis"
	"github.com/queuejw/messenger/internal/pkg/config"
)

var (
	_ entity.Backend = (*filestore.Store)(nil)
	_ entity.Backend = (*memory.Store)(nil)
	_ entity.Backend = (*mongostore.Backend)(nil)
	_ entity.Backend = (*redisstore.Backend)(nil)
)

// Open returns the backend for cfg.Storage.Driver. Network backends are
// pinged before Open returns.
func Open(ctx context.Context, cfg *config.Config) (entity.Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		return backend(filestore.New(cfg.Storage.DataDir))
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverMongo:
		return backend(mongostore.Open(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		}))
	case config.DriverRedis:
		return backend(redisstore.Open(ctx, redisstore.Config{
			Addr:   cfg.Redis.Addr,
			DB:     cfg.Redis.DB,
			Prefix: cfg.Redis.Prefix,
		}))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// backend drops the typed nil a failed constructor returns.
func backend[B entity.Backend](b B, err error) (entity.Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
