package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/queuejw/messenger/internal/pkg/config"
)

func TestOpen_LocalDrivers(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.DriverFile, DataDir: filepath.Join(t.TempDir(), "data")}}
	b, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open(file) returned error: %v", err)
	}
	if b.Name() != "file" {
		t.Fatalf("expected file backend, got %q", b.Name())
	}
	if err := b.Ping(ctx); err != nil {
		t.Fatalf("expected data directory to be created, got %v", err)
	}

	cfg.Storage.Driver = config.DriverMemory
	if b, err = Open(ctx, cfg); err != nil || b.Name() != "memory" {
		t.Fatalf("Open(memory) = %v, %v", b, err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
