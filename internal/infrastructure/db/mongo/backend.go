package mongo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/queuejw/messenger/internal/core/domain"
)

// Backend stores each entity kind as a collection of the same name. Records
// are kept as native documents whose _id is the entity id, so the unique _id
// index provides exclusive create.
type Backend struct {
	db      *mongo.Database
	timeout time.Duration
}

func NewBackend(db *mongo.Database, timeout time.Duration) *Backend {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Backend{db: db, timeout: timeout}
}

func (b *Backend) Name() string { return "mongo" }

func (b *Backend) Insert(ctx context.Context, kind, id string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var fields bson.D
	if err := bson.UnmarshalExtJSON(data, false, &fields); err != nil {
		return fmt.Errorf("convert record: %w", err)
	}
	doc := append(bson.D{{Key: "_id", Value: id}}, fields...)

	if _, err := b.db.Collection(kind).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	return nil
}

func (b *Backend) Read(ctx context.Context, kind, id string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	raw, err := b.db.Collection(kind).FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return toJSON(raw)
}

func (b *Backend) Exists(ctx context.Context, kind, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	n, err := b.db.Collection(kind).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", kind, err)
	}
	return n > 0, nil
}

// Scan streams the collection through a cursor; documents are converted one
// at a time as the consumer ranges.
func (b *Backend) Scan(ctx context.Context, kind string) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		cur, err := b.db.Collection(kind).Find(ctx, bson.D{})
		if err != nil {
			yield(nil, fmt.Errorf("find %s: %w", kind, err))
			return
		}
		defer cur.Close(context.WithoutCancel(ctx))

		for cur.Next(ctx) {
			data, err := toJSON(cur.Current)
			if !yield(data, err) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, fmt.Errorf("cursor %s: %w", kind, err))
		}
	}
}

func (b *Backend) Remove(ctx context.Context, kind, id string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if _, err := b.db.Collection(kind).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

// Ping mirrors the readiness probe: client ping, then a database command.
func (b *Backend) Ping(ctx context.Context) error {
	if err := b.db.Client().Ping(ctx, nil); err != nil {
		return err
	}
	return b.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (b *Backend) Close(ctx context.Context) error {
	return b.db.Client().Disconnect(ctx)
}

// toJSON renders a document as relaxed extended JSON. The extra _id key is
// ignored when the record is decoded into its Go type.
func toJSON(raw bson.Raw) ([]byte, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	return data, nil
}
