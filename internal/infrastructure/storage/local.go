package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sangkips/invoicer/pkg/apperror"
)

// LocalStore writes files under a single directory
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

// Dir returns the absolute storage directory
func (s *LocalStore) Dir() string {
	return s.dir
}

// Path returns where name is (or would be) stored
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Exists reports whether name is present
func (s *LocalStore) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// Save writes data atomically and returns the absolute file path.
// An existing file with the same name is replaced.
func (s *LocalStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", apperror.NewStoreWriteError(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", apperror.NewStoreWriteError(err)
	}
	if err := tmp.Close(); err != nil {
		return "", apperror.NewStoreWriteError(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", apperror.NewStoreWriteError(err)
	}
	return path, nil
}

func (s *LocalStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	f, err := os.Open(location)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.NewNotFoundError("Invoice file")
	}
	return f, err
}

func (s *LocalStore) Delete(_ context.Context, location string) error {
	err := os.Remove(location)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
