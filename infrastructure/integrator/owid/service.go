package owid

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vfg2006/covid-insights/infrastructure/integrator/owid/owidclient"
	"github.com/vfg2006/covid-insights/pkg/log"
)

type OWIDIntegrator interface {
	FetchCSV(ctx context.Context, url string) ([]byte, error)
	SaveBackup(data []byte, path string) error
}

type OWIDService struct {
	Client owidclient.Client
}

func New(client owidclient.Client) OWIDIntegrator {
	return &OWIDService{
		Client: client,
	}
}

func (s *OWIDService) FetchCSV(ctx context.Context, url string) ([]byte, error) {
	logger := log.ForContext(ctx).WithField("source", url)
	logger.Info("Baixando dados do Our World in Data")

	data, err := s.Client.Download(ctx, url)
	if err != nil {
		return nil, err
	}

	logger.WithField("bytes", len(data)).Info("Download concluído")

	return data, nil
}

// SaveBackup grava a cópia local usada quando todas as URLs falham
func (s *OWIDService) SaveBackup(data []byte, path string) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
