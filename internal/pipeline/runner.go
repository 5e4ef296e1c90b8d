// Package pipeline encadeia carregamento, limpeza, análise e geração dos artefatos
package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/covid-insights/infrastructure/integrator/owid"
	"github.com/vfg2006/covid-insights/infrastructure/integrator/owid/owidclient"
	"github.com/vfg2006/covid-insights/infrastructure/storage"
	"github.com/vfg2006/covid-insights/internal/config"
	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/internal/usecases/analyzing"
	"github.com/vfg2006/covid-insights/internal/usecases/cleaning"
	"github.com/vfg2006/covid-insights/internal/usecases/exporting"
	"github.com/vfg2006/covid-insights/internal/usecases/loading"
	"github.com/vfg2006/covid-insights/internal/usecases/publishing"
	"github.com/vfg2006/covid-insights/internal/usecases/rendering"
	"github.com/vfg2006/covid-insights/internal/usecases/reporting"
	"github.com/vfg2006/covid-insights/pkg/log"
	"github.com/vfg2006/covid-insights/pkg/utils"
)

type Runner struct {
	cleaningOptions cleaning.Options
	loader          loading.Loader
	cleaner         cleaning.Cleaner
	analyzer        analyzing.Analyzer
	visualizer      rendering.Visualizer
	reporter        reporting.Reporter
	exporter        exporting.Exporter
	publisher       publishing.Publisher
}

// Dependencies permite trocar qualquer etapa (usado nos testes)
type Dependencies struct {
	Loader     loading.Loader
	Cleaner    cleaning.Cleaner
	Analyzer   analyzing.Analyzer
	Visualizer rendering.Visualizer
	Reporter   reporting.Reporter
	Exporter   exporting.Exporter
	Publisher  publishing.Publisher
}

func New(options cleaning.Options, deps Dependencies) *Runner {
	return &Runner{
		cleaningOptions: options,
		loader:          deps.Loader,
		cleaner:         deps.Cleaner,
		analyzer:        deps.Analyzer,
		visualizer:      deps.Visualizer,
		reporter:        deps.Reporter,
		exporter:        deps.Exporter,
		publisher:       deps.Publisher,
	}
}

// NewFromConfig monta o pipeline completo a partir da configuração
func NewFromConfig(cfg *config.Config) (*Runner, error) {
	analyzer, err := analyzing.NewService(cfg.Analysis.RollingWindow)
	if err != nil {
		return nil, err
	}

	integrator := owid.New(owidclient.NewClient(cfg.Source.DownloadTimeout))

	deps := Dependencies{
		Loader:     loading.NewService(cfg, integrator, loading.NewPostgresOpener(cfg.Database)),
		Cleaner:    cleaning.NewService(),
		Analyzer:   analyzer,
		Visualizer: rendering.NewService(cfg.Output.Dir, cfg.Output.ChartWidth, cfg.Output.ChartHeight),
		Reporter:   reporting.NewService(cfg.Output.ReportDir, analyzer),
	}

	if cfg.Output.ExportEnabled {
		deps.Exporter = exporting.NewService(cfg.Output.ReportDir)
	}

	if cfg.Storage.Enabled {
		store, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			return nil, err
		}
		deps.Publisher = publishing.NewService(store, cfg.Storage.Bucket, cfg.Storage.Prefix)
	}

	return New(cleaning.OptionsFromConfig(cfg.Cleaning), deps), nil
}

// Run executa uma vez e devolve o resumo. Qualquer erro interrompe a execução.
func (r *Runner) Run(ctx context.Context) (*domain.RunSummary, error) {
	ctx, runID := log.WithRunID(ctx)
	logger := log.ForContext(ctx)

	summary := &domain.RunSummary{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
	}

	logger.Info("Iniciando análise")

	loaded, err := r.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	summary.Source = loaded.Source
	summary.Fingerprint = loaded.Fingerprint
	summary.LoadedRows = loaded.Dataset.Len()

	cleaned, err := r.cleaner.Clean(ctx, loaded.Dataset, r.cleaningOptions)
	if err != nil {
		return nil, err
	}
	summary.CleanedRows = cleaned.Len()
	summary.Countries = cleaned.Countries()
	summary.FirstDate, summary.LastDate = cleaned.DateRange()

	metrics, err := r.analyzer.Analyze(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	summary.MetricSeries = metrics.Len()
	snapshots := r.analyzer.Snapshots(cleaned, metrics)

	figures, err := r.visualizer.RenderDefaults(ctx, metrics, snapshots)
	if err != nil {
		return nil, err
	}
	summary.Artifacts = append(summary.Artifacts, figures...)

	report, err := r.reporter.Write(ctx, reporting.Input{
		Snapshots:   snapshots,
		Source:      summary.Source,
		Fingerprint: summary.Fingerprint,
		FirstDate:   summary.FirstDate,
		LastDate:    summary.LastDate,
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao gerar o relatório")
	}
	summary.Artifacts = append(summary.Artifacts, *report)

	if r.exporter != nil {
		export, err := r.exporter.ExportMetrics(ctx, metrics)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao exportar métricas")
		}
		summary.Artifacts = append(summary.Artifacts, *export)
	}

	summary.CompletedAt = time.Now().UTC()
	summary.Duration = summary.CompletedAt.Sub(summary.StartedAt)

	if r.exporter != nil {
		manifest, err := r.exporter.WriteManifest(ctx, summary)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao gravar o manifesto")
		}
		summary.Artifacts = append(summary.Artifacts, *manifest)
	}

	if r.publisher != nil {
		published, err := r.publisher.Publish(ctx, runID, summary.Artifacts)
		if err != nil {
			return nil, err
		}
		summary.Published = published
	}

	logger.WithFields(log.Fields{
		"rows":        summary.CleanedRows,
		"duration_ms": summary.Duration.Milliseconds(),
	}).Infof("Análise concluída: %d artefatos", len(summary.Artifacts))
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logger.Debugf("Resumo da execução: %s", utils.PrettyJson(summary))
	}

	return summary, nil
}
