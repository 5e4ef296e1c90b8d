package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	storagemocks "github.com/vfg2006/covid-insights/infrastructure/storage/mocks"
	"github.com/vfg2006/covid-insights/internal/config"
	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/internal/usecases/loading"
	"github.com/vfg2006/covid-insights/internal/usecases/publishing"
)

func writeSampleCSV(t *testing.T, dir string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("iso_code,continent,location,date,total_cases,total_deaths,people_vaccinated,people_fully_vaccinated,population\n")
	countries := []struct {
		iso, name string
		base      int
	}{
		{"KEN", "Kenya", 100},
		{"BRA", "Brazil", 1000},
		{"DEU", "Germany", 500},
	}
	for _, c := range countries {
		for d := 1; d <= 14; d++ {
			vaccinated := ""
			if d > 3 {
				vaccinated = fmt.Sprint(d * c.base)
			}
			fmt.Fprintf(&b, "%s,Somewhere,%s,2021-02-%02d,%d,%d,%s,%s,%d\n",
				c.iso, c.name, d, c.base*d*d, c.base*d/50, vaccinated, vaccinated, c.base*1000)
		}
	}
	b.WriteString("OWID_WRL,,World,2021-02-01,1,0,0,0,100\n")

	path := filepath.Join(dir, "owid.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig(dir, input string) *config.Config {
	return &config.Config{
		Source: config.Source{
			InputPath: input,
			Delimiter: ",",
		},
		Cleaning: config.Cleaning{
			MissingPolicy: config.MissingPolicyFFill,
		},
		Analysis: config.Analysis{RollingWindow: 7},
		Output: config.Output{
			Dir:           filepath.Join(dir, "visualizations"),
			ReportDir:     filepath.Join(dir, "output"),
			ChartWidth:    640,
			ChartHeight:   360,
			ExportEnabled: true,
		},
	}
}

func TestRunner_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, writeSampleCSV(t, dir))

	runner, err := NewFromConfig(cfg)
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, cfg.Source.InputPath, summary.Source)
	assert.Equal(t, 43, summary.LoadedRows)
	assert.Equal(t, 42, summary.CleanedRows, "linha agregada do OWID fica de fora")
	assert.Equal(t, []string{"Brazil", "Germany", "Kenya"}, summary.Countries)
	assert.Len(t, summary.Fingerprint, 64)

	expected := []string{
		"visualizations/total_cases.png",
		"visualizations/new_cases.png",
		"visualizations/vaccination_progress.png",
		"visualizations/death_rate_comparison.png",
		"visualizations/vaccination_map.html",
		"output/insights.md",
		"output/metrics.parquet",
		"output/manifest.json",
	}
	for _, rel := range expected {
		_, err := os.Stat(filepath.Join(dir, rel))
		assert.NoError(t, err, rel)
	}
	assert.Len(t, summary.Artifacts, len(expected))
}

func TestRunner_Errors(t *testing.T) {
	t.Run("Fonte indisponível - IOError", func(t *testing.T) {
		dir := t.TempDir()
		runner, err := NewFromConfig(testConfig(dir, filepath.Join(dir, "nao-existe.csv")))
		require.NoError(t, err)

		_, err = runner.Run(context.Background())
		var ioErr *loading.IOError
		assert.True(t, errors.As(err, &ioErr))
	})

	t.Run("Política inválida - ConfigError", func(t *testing.T) {
		dir := t.TempDir()
		cfg := testConfig(dir, writeSampleCSV(t, dir))
		cfg.Cleaning.MissingPolicy = "mean"

		runner, err := NewFromConfig(cfg)
		require.NoError(t, err)

		_, err = runner.Run(context.Background())
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("Janela inválida - ConfigError na montagem", func(t *testing.T) {
		cfg := testConfig(t.TempDir(), "")
		cfg.Analysis.RollingWindow = 0

		_, err := NewFromConfig(cfg)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestRunner_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	cfg := testConfig(dir, writeSampleCSV(t, dir))
	cfg.Output.ExportEnabled = false

	runner, err := NewFromConfig(cfg)
	require.NoError(t, err)

	store := storagemocks.NewMockObjectStore(ctrl)
	store.EXPECT().EnsureBucket(gomock.Any(), "covid-insights").Return(nil)
	store.EXPECT().PutObject(gomock.Any(), "covid-insights", gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(6)
	runner.publisher = publishing.NewService(store, "covid-insights", "runs")

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Published, 6)
	assert.True(t, strings.HasPrefix(summary.Published[0], "s3://covid-insights/runs/run="+summary.RunID+"/"))
}

func TestRunner_PublishToLocalStore(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, writeSampleCSV(t, dir))

	bucketRoot := filepath.Join(dir, "bucket")
	cfg.Storage = config.Storage{
		Enabled:  true,
		Endpoint: "file://" + bucketRoot,
		Bucket:   "covid-insights",
		Prefix:   "runs",
	}

	runner, err := NewFromConfig(cfg)
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(bucketRoot, "covid-insights", "runs", "run="+summary.RunID, "manifest.json"))
	assert.NoError(t, err)
}

func TestRunner_DebugLevel(t *testing.T) {
	previous := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() { logrus.SetLevel(previous) })

	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	dir := t.TempDir()
	runner, err := NewFromConfig(testConfig(dir, writeSampleCSV(t, dir)))
	require.NoError(t, err)

	var summary *domain.RunSummary
	require.NotPanics(t, func() {
		summary, err = runner.Run(context.Background())
	})
	require.NoError(t, err)

	var dump string
	for _, entry := range hook.AllEntries() {
		if strings.HasPrefix(entry.Message, "Resumo da execução") {
			dump = entry.Message
		}
	}
	require.NotEmpty(t, dump)
	assert.Contains(t, dump, summary.RunID)
	assert.Contains(t, dump, "\n\t")
}

func TestRunner_RunIDOnStageLogs(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	dir := t.TempDir()
	runner, err := NewFromConfig(testConfig(dir, writeSampleCSV(t, dir)))
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	stages := map[string]bool{}
	for _, entry := range hook.AllEntries() {
		stage, ok := entry.Data["stage"].(string)
		if !ok {
			continue
		}
		assert.Equal(t, summary.RunID, entry.Data["run_id"], "%s: %s", stage, entry.Message)
		stages[stage] = true
	}

	for _, stage := range []string{"loading", "cleaning", "analyzing", "rendering", "reporting", "exporting"} {
		assert.True(t, stages[stage], stage)
	}
}
