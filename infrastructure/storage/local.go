package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore espelha o layout do bucket em um diretório local
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) EnsureBucket(ctx context.Context, bucket string) error {
	if bucket == "" {
		return ErrInvalidObject
	}
	return os.MkdirAll(filepath.Join(s.root, bucket), 0o755)
}

func (s *LocalStore) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if bucket == "" || key == "" || strings.Contains(key, "..") {
		return ErrInvalidObject
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
