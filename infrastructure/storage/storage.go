// Package storage grava os artefatos de uma execução em um object store
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/vfg2006/covid-insights/internal/config"
)

const localScheme = "file://"

var (
	ErrInvalidObject = errors.New("bucket and key are required")
	ErrInvalidRoot   = errors.New("local storage directory is required")
)

type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// NewObjectStore escolhe a implementação pelo endpoint: file://<dir> grava
// em disco, qualquer outro vai para o S3/MinIO
func NewObjectStore(cfg config.Storage) (ObjectStore, error) {
	if root, ok := strings.CutPrefix(cfg.Endpoint, localScheme); ok {
		if root == "" {
			return nil, ErrInvalidRoot
		}
		return NewLocalStore(root), nil
	}

	store, err := NewS3Store(cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}
