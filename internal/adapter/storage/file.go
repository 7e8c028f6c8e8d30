package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.ClosableStateStore = (*FileStore)(nil)

const filePerm = 0o600

// FileStore keeps all keys of a profile in one JSON document on disk.
// Every write replaces the document atomically.
type FileStore struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

func NewFileStore(path string) (*FileStore, error) {
	const op = "NewFileStore"

	if path == "" {
		return nil, fmt.Errorf("%s: file path is empty", op)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &FileStore{path: path, data: make(map[string]json.RawMessage)}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal(b, &s.data); err != nil {
		slog.Warn("state file is malformed, starting empty",
			"op", op, "path", path, "err", err)
		s.data = make(map[string]json.RawMessage)
	}
	return s, nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "FileStore.Get"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", op, key, domain.ErrNotFound)
	}
	return bytes.Clone(v), nil
}

// Set stores value under key. The value must be a JSON document.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	const op = "FileStore.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !json.Valid(value) {
		return fmt.Errorf("%s: value of %q is not JSON", op, key)
	}
	raw := json.RawMessage(bytes.Clone(value))

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = raw
	if err := s.flushLocked(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	const op = "FileStore.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.flushLocked(); err != nil {
		s.data[key] = prev
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FileStore) Close() {}

func (s *FileStore) flushLocked() (err error) {
	b, err := json.Marshal(s.data)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
