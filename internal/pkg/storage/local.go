package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore implements ObjectStore on the local file system. Files are
// laid out as <basePath>/<bucket>/<key>.
type LocalStore struct {
	basePath string
	baseURL  string
}

// NewLocalStore creates a new local storage instance
func NewLocalStore(basePath, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath returns the root directory, for serving files in development.
func (s *LocalStore) BasePath() string {
	return s.basePath
}

func (s *LocalStore) path(bucket, key string) (string, error) {
	full := filepath.Join(s.basePath, bucket, filepath.FromSlash(key))
	root := filepath.Join(s.basePath, bucket) + string(os.PathSeparator)
	if !strings.HasPrefix(full, root) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return full, nil
}

// Upload writes the object to disk.
func (s *LocalStore) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	full, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		os.Remove(full)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Remove deletes files. Already missing files are skipped.
func (s *LocalStore) Remove(ctx context.Context, bucket string, keys ...string) error {
	var errs []error
	for _, key := range keys {
		full, err := s.path(bucket, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// PublicURL returns the URL the dev file server exposes the object at.
func (s *LocalStore) PublicURL(bucket, key string) string {
	return s.baseURL + "/" + bucket + "/" + key
}
