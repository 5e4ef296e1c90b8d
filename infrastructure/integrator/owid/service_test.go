package owid

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/covid-insights/infrastructure/integrator/owid/owidclient"
)

type stubClient struct {
	data []byte
	err  error
}

func (s stubClient) Download(ctx context.Context, url string) ([]byte, error) {
	return s.data, s.err
}

var _ owidclient.Client = stubClient{}

func TestOWIDService_FetchCSV(t *testing.T) {
	service := New(stubClient{data: []byte("a,b\n")})
	data, err := service.FetchCSV(context.Background(), "https://example.org/data.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	failing := New(stubClient{err: errors.New("timeout")})
	_, err = failing.FetchCSV(context.Background(), "https://example.org/data.csv")
	assert.Error(t, err)
}

func TestOWIDService_SaveBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local_backup", "owid-covid-data.csv")

	service := New(stubClient{})
	require.NoError(t, service.SaveBackup([]byte("x,y\n"), path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x,y\n", string(content))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, service.SaveBackup([]byte("ignored"), ""))
}
