// Package publishing envia os artefatos da execução para o object store
package publishing

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/vfg2006/covid-insights/infrastructure/storage"
	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/log"
)

var ErrPublish = errors.New("error publishing artifacts")

type Publisher interface {
	Publish(ctx context.Context, runID string, figures []domain.Figure) ([]string, error)
}

type Service struct {
	store  storage.ObjectStore
	bucket string
	prefix string
}

func NewService(store storage.ObjectStore, bucket, prefix string) *Service {
	return &Service{
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// ObjectKey monta a chave prefix/run=<id>/<arquivo>
func (s *Service) ObjectKey(runID, name string) string {
	return path.Join(s.prefix, fmt.Sprintf("run=%s", runID), name)
}

// Publish envia todos os artefatos; a primeira falha interrompe a publicação
func (s *Service) Publish(ctx context.Context, runID string, figures []domain.Figure) ([]string, error) {
	logger := log.ForContext(ctx)
	if err := s.store.EnsureBucket(ctx, s.bucket); err != nil {
		return nil, errors.Wrapf(ErrPublish, "bucket %s: %v", s.bucket, err)
	}

	published := make([]string, 0, len(figures))
	for _, fig := range figures {
		content, err := os.ReadFile(fig.Path)
		if err != nil {
			return nil, errors.Wrapf(ErrPublish, "%s: %v", fig.Path, err)
		}

		key := s.ObjectKey(runID, fig.Name)
		if err := s.store.PutObject(ctx, s.bucket, key, content, fig.ContentType); err != nil {
			return nil, errors.Wrapf(ErrPublish, "%s: %v", key, err)
		}

		uri := fmt.Sprintf("s3://%s/%s", s.bucket, key)
		published = append(published, uri)
		logger.WithField("key", uri).Debug("Artefato publicado")
	}

	logger.WithFields(log.Fields{
		"stage": "publishing",
		"rows":  len(published),
	}).Info("Artefatos publicados")

	return published, nil
}
