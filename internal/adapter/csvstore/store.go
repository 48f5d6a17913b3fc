// Package csvstore keeps posts in a flat CSV file, one row per post.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/pscheid92/allin/internal/domain"
)

// Store implements domain.PostStore on a CSV file. Appends and reads are
// serialized so concurrent submissions never overwrite each other.
type Store struct {
	path string
	mu   sync.RWMutex
}

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Append writes one row, creating the file (with header) when missing.
func (s *Store) Append(ctx context.Context, post domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
		f, err = os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	}
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat store: %w", err)
	}

	rows := []row{toRow(post)}
	if info.Size() == 0 {
		if err := gocsv.Marshal(rows, f); err != nil {
			return fmt.Errorf("write first row: %w", err)
		}
		return f.Sync()
	}

	if err := terminateLastLine(f, info.Size()); err != nil {
		return err
	}
	if err := gocsv.MarshalWithoutHeaders(rows, f); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return f.Sync()
}

// terminateLastLine adds a trailing newline when a hand-edited file lacks one.
func terminateLastLine(f *os.File, size int64) error {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return fmt.Errorf("read store tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("terminate last line: %w", err)
	}
	return nil
}

// List reads the whole file. A missing file is an empty store.
func (s *Store) List(ctx context.Context) ([]domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Post{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	posts, err := ReadPosts(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return posts, nil
}

// Ping succeeds when the file is readable, or when it is absent and Append
// could create it.
func (s *Store) Ping(_ context.Context) error {
	f, err := os.Open(s.path)
	if err == nil {
		return f.Close()
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("open store: %w", err)
	}

	dir := nearestExistingDir(filepath.Dir(s.path))
	probe, err := os.CreateTemp(dir, ".allin-ping-*")
	if err != nil {
		return fmt.Errorf("store directory %s not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func nearestExistingDir(dir string) string {
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

var _ domain.PostStore = (*Store)(nil)
