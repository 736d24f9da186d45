package store

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one file per key inside a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the store in dir.
// If dir is empty, uses ~/.training_agent
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".training_agent")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(fs.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (fs *FileStore) Set(_ context.Context, key, value string) error {
	path := fs.path(key)

	// Write to temporary file first, then rename (atomic operation)
	tmpPath := path + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmpPath, []byte(value), 0o600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

func (fs *FileStore) path(key string) string {
	return filepath.Join(fs.dir, sanitizeKey(key)+".json")
}

// sanitizeKey ensures the key is safe for use as a filename
func sanitizeKey(key string) string {
	if len(key) > 200 {
		hash := md5.Sum([]byte(key))
		return fmt.Sprintf("hash_%x", hash)
	}

	unsafe := []string{"/", "\\", ":", "?", "&", "=", "#", "<", ">", "|", "*", "\"", " "}
	result := key
	for _, char := range unsafe {
		result = strings.ReplaceAll(result, char, "_")
	}

	return result
}
