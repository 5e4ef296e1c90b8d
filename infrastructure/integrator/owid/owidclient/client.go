package owidclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vfg2006/covid-insights/pkg/utils"
)

const defaultTimeout = 2 * time.Minute

type Client interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type OWIDClient struct {
	httpClient *http.Client
}

// NewClient cria o cliente HTTP usado para baixar o CSV do Our World in Data
func NewClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OWIDClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *OWIDClient) Download(ctx context.Context, url string) ([]byte, error) {
	data, err := utils.MakeRequest(ctx, c.httpClient, url)
	if err != nil {
		return nil, fmt.Errorf("erro ao baixar %s: %w", url, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("resposta vazia de %s", url)
	}

	return data, nil
}
