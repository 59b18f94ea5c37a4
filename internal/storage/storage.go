package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"chefbook/internal/docstore"
)

// FileStore keeps one JSON file per document key under a base directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates a new FileStore and ensures the base directory exists.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

// sanitizeKey makes the key safe for filenames.
func sanitizeKey(key string) string {
	return strings.ReplaceAll(url.PathEscape(key), ":", "-")
}

func (s *FileStore) getPath(key string) string {
	return filepath.Join(s.basePath, sanitizeKey(key)+".json")
}

// Get reads the document stored at key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.getPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}
	return data, nil
}

// Set replaces the document at key. The write goes through a temp file so a
// crash never leaves a truncated document behind.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(s.basePath, ".doc-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close document file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.getPath(key)); err != nil {
		return fmt.Errorf("failed to move document file into place: %w", err)
	}
	return nil
}

// Remove deletes the document at key.
func (s *FileStore) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.getPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove document file: %w", err)
	}
	return nil
}
