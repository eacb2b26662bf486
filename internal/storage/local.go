package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// LocalStore serves artifacts straight from the filesystem they were built on.
type LocalStore struct {
	fs afero.Fs
}

func NewLocalStore(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs}
}

func (s *LocalStore) Publish(_ context.Context, localPath string) (string, error) {
	if _, err := s.fs.Stat(localPath); err != nil {
		return "", fmt.Errorf("publish %s: %w", localPath, err)
	}
	return localPath, nil
}

func (s *LocalStore) Open(_ context.Context, location string) (io.ReadCloser, int64, error) {
	f, err := s.fs.Open(location)
	if err != nil {
		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}

	return f, info.Size(), nil
}

func (s *LocalStore) Remove(_ context.Context, location string) error {
	if err := s.fs.Remove(location); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
