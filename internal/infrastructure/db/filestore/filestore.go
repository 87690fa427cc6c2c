// Package filestore is the canonical entity backend: every record is a JSON
// file at <root>/<kind>/<id>/data.json.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/queuejw/messenger/internal/core/domain"
)

const (
	recordFile = "data.json"
	dirPerm    = 0o755
	filePerm   = 0o644
)

var errInvalidID = errors.New("invalid record id")

// Store keeps records under a root directory.
type Store struct {
	root string
}

// New returns a Store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Name() string { return "file" }

// Root returns the absolute data directory.
func (s *Store) Root() string { return s.root }

// Insert writes data to a temporary file next to the target, syncs it, then
// hard-links it into place. The link fails when the target already exists,
// which gives exclusive-create semantics without a lock.
func (s *Store) Insert(ctx context.Context, kind, id string, data []byte) error {
	if !validID(id) {
		return fmt.Errorf("%w: %q", errInvalidID, id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := s.recordDir(kind, id)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".data-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp record file: %w", err)
	}
	tmpPath := tmpFile.Name()
	// The published record is a second link to the same inode, so the temp
	// name can always go.
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	if err := tmpFile.Chmod(filePerm); err != nil {
		tmpFile.Close()
		return fmt.Errorf("setting record permissions: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing record: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing record: %w", err)
	}

	if err := os.Link(tmpPath, filepath.Join(dir, recordFile)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("publishing record: %w", err)
	}

	syncDir(dir)
	return nil
}

func (s *Store) Read(ctx context.Context, kind, id string) ([]byte, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.recordPath(kind, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Store) Exists(ctx context.Context, kind, id string) (bool, error) {
	if !validID(id) {
		return false, fmt.Errorf("%w: %q", errInvalidID, id)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(s.recordPath(kind, id))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Scan lists the kind directory once per pass and reads each record lazily.
// Directories without a data.json (an interrupted create) are skipped.
func (s *Store) Scan(ctx context.Context, kind string) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		entries, err := os.ReadDir(filepath.Join(s.root, kind))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return
			}
			yield(nil, err)
			return
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !entry.IsDir() || !validID(entry.Name()) {
				continue
			}

			data, err := os.ReadFile(s.recordPath(kind, entry.Name()))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				if !yield(nil, err) {
					return
				}
				continue
			}
			if !yield(data, nil) {
				return
			}
		}
	}
}

func (s *Store) Remove(ctx context.Context, kind, id string) error {
	if !validID(id) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.RemoveAll(s.recordDir(kind, id))
}

// Ping checks that the data directory is still there and is a directory.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", s.root)
	}
	return nil
}

func (s *Store) Close(_ context.Context) error { return nil }

func (s *Store) recordDir(kind, id string) string {
	return filepath.Join(s.root, kind, id)
}

func (s *Store) recordPath(kind, id string) string {
	return filepath.Join(s.root, kind, id, recordFile)
}

// validID rejects ids that would escape the kind directory or collide with
// temp files.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." || strings.HasPrefix(id, ".") {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00")
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}
