package entity

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/queuejw/messenger/internal/core/domain"
	"github.com/queuejw/messenger/internal/infrastructure/db/memory"
)

type note struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// flakyBackend wraps a memory store and fails the operations named in failOn.
type flakyBackend struct {
	*memory.Store
	failOn map[string]error
	raw    [][]byte
}

func (b *flakyBackend) Insert(ctx context.Context, kind, id string, data []byte) error {
	if err := b.failOn["insert"]; err != nil {
		return err
	}
	return b.Store.Insert(ctx, kind, id, data)
}

func (b *flakyBackend) Scan(ctx context.Context, kind string) iter.Seq2[[]byte, error] {
	if b.raw != nil {
		return func(yield func([]byte, error) bool) {
			for _, data := range b.raw {
				if !yield(data, nil) {
					return
				}
			}
		}
	}
	if err := b.failOn["scan"]; err != nil {
		return func(yield func([]byte, error) bool) { yield(nil, err) }
	}
	return b.Store.Scan(ctx, kind)
}

func TestCollection_CreateGet(t *testing.T) {
	c := NewCollection[note](memory.New(), "notes")
	ctx := context.Background()

	if err := c.Create(ctx, "n1", &note{ID: "n1", Body: "hello"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	got, err := c.Get(ctx, "n1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Body != "hello" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := c.Create(ctx, "n1", &note{ID: "n1", Body: "again"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := c.Get(ctx, "n2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCollection_BackendFailureIsStorageError(t *testing.T) {
	backend := &flakyBackend{Store: memory.New(), failOn: map[string]error{"insert": errors.New("io")}}
	c := NewCollection[note](backend, "notes")

	err := c.Create(context.Background(), "n1", &note{})
	var serr *domain.StorageError
	if !errors.As(err, &serr) || !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if serr.Op != "create" || serr.Kind != "notes" || serr.ID != "n1" {
		t.Fatalf("unexpected StorageError fields: %+v", serr)
	}
}

func TestCollection_AllIsRestartable(t *testing.T) {
	c := NewCollection[note](memory.New(), "notes")
	ctx := context.Background()

	all := c.All(ctx)
	count := func() int {
		n := 0
		for _, err := range all {
			if err != nil {
				t.Fatalf("All returned error: %v", err)
			}
			n++
		}
		return n
	}

	if n := count(); n != 0 {
		t.Fatalf("expected 0 records, got %d", n)
	}
	for _, id := range []string{"a", "b"} {
		if err := c.Create(ctx, id, &note{ID: id}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	// The same sequence observes records created after it was built.
	if n := count(); n != 2 {
		t.Fatalf("expected 2 records, got %d", n)
	}
	if n := count(); n != 2 {
		t.Fatalf("expected 2 records on the second pass, got %d", n)
	}
}

func TestCollection_AllReportsCorruptRecordsAndContinues(t *testing.T) {
	backend := &flakyBackend{Store: memory.New(), raw: [][]byte{[]byte(`{"id":"a"}`), []byte(`{broken`), []byte(`{"id":"c"}`)}}
	c := NewCollection[note](backend, "notes")

	var ids []string
	var decodeErrs int
	for rec, err := range c.All(context.Background()) {
		if err != nil {
			var serr *domain.StorageError
			if errors.As(err, &serr) && serr.Op == "decode" {
				decodeErrs++
				continue
			}
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, rec.ID)
	}
	if decodeErrs != 1 || len(ids) != 2 {
		t.Fatalf("expected 2 records and 1 decode error, got %v and %d", ids, decodeErrs)
	}
}

func TestCollection_ScanFailureEndsSequence(t *testing.T) {
	backend := &flakyBackend{Store: memory.New(), failOn: map[string]error{"scan": errors.New("io")}}
	c := NewCollection[note](backend, "notes")

	n := 0
	for _, err := range c.All(context.Background()) {
		n++
		if !errors.Is(err, domain.ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}
	}
	if n != 1 {
		t.Fatalf("expected a single error, got %d items", n)
	}
}

func TestCollection_Find(t *testing.T) {
	c := NewCollection[note](memory.New(), "notes")
	ctx := context.Background()
	for _, n := range []note{{"1", "keep"}, {"2", "drop"}, {"3", "keep"}} {
		if err := c.Create(ctx, n.ID, &n); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	matched := 0
	for rec, err := range c.Find(ctx, func(n *note) bool { return n.Body == "keep" }) {
		if err != nil {
			t.Fatalf("Find returned error: %v", err)
		}
		if rec.Body != "keep" {
			t.Fatalf("unexpected record: %+v", rec)
		}
		matched++
	}
	if matched != 2 {
		t.Fatalf("expected 2 matches, got %d", matched)
	}
}

func TestCollection_NewIDSkipsTakenIDs(t *testing.T) {
	candidates := []string{"taken", "taken", "free"}
	next := 0
	c := NewCollection[note](memory.New(), "notes", WithIDFunc(func() string {
		id := candidates[next]
		next++
		return id
	}))
	ctx := context.Background()

	if err := c.Create(ctx, "taken", &note{ID: "taken"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	id, err := c.NewID(ctx)
	if err != nil {
		t.Fatalf("NewID returned error: %v", err)
	}
	if id != "free" {
		t.Fatalf("expected %q, got %q", "free", id)
	}
}

func TestCollection_NewIDHonorsContext(t *testing.T) {
	c := NewCollection[note](memory.New(), "notes")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.NewID(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCollection_DefaultIDs(t *testing.T) {
	if got := ShortID(); len(got) != 8 {
		t.Fatalf("expected 8 character id, got %q", got)
	}
	if got := LongID(); len(got) != 36 {
		t.Fatalf("expected uuid, got %q", got)
	}
}

func TestCollection_Observer(t *testing.T) {
	type call struct {
		backend, kind, op string
		failed            bool
	}
	var calls []call
	c := NewCollection[note](memory.New(), "notes", WithObserver(func(backend, kind, op string, _ time.Duration, err error) {
		calls = append(calls, call{backend, kind, op, err != nil})
	}))
	ctx := context.Background()

	_ = c.Create(ctx, "a", &note{ID: "a"})
	_, _ = c.Get(ctx, "missing")
	for range c.All(ctx) {
	}

	want := []call{
		{"memory", "notes", "create", false},
		{"memory", "notes", "get", true},
		{"memory", "notes", "scan", false},
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d observations, got %+v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("observation %d: expected %+v, got %+v", i, want[i], calls[i])
		}
	}
}
