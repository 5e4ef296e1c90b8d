// Package rendering gera os gráficos PNG e o mapa HTML a partir das métricas
package rendering

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/log"
)

const (
	defaultWidth  = 1400
	defaultHeight = 700
)

type Visualizer interface {
	Render(ctx context.Context, ms *domain.MetricSet, snapshots []domain.Snapshot, req ChartRequest) (*domain.Figure, error)
	RenderDefaults(ctx context.Context, ms *domain.MetricSet, snapshots []domain.Snapshot) ([]domain.Figure, error)
}

type Service struct {
	outputDir string
	width     int
	height    int
}

func NewService(outputDir string, width, height int) *Service {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return &Service{
		outputDir: outputDir,
		width:     width,
		height:    height,
	}
}

func (s *Service) Render(ctx context.Context, ms *domain.MetricSet, snapshots []domain.Snapshot, req ChartRequest) (*domain.Figure, error) {
	start := time.Now()
	req = req.withDefaults()

	var (
		content     []byte
		contentType = "image/png"
		err         error
	)

	switch req.Kind {
	case ChartLine:
		var lines []lineSeries
		lines, err = selectLines(ms, req)
		if err == nil {
			content, err = drawLineChart(lines, req, s.width, s.height)
		}
	case ChartBar:
		var bars []barValue
		bars, err = selectBars(snapshots, req)
		if err == nil {
			content, err = drawBarChart(bars, req, s.width, s.height)
		}
	case ChartChoropleth:
		contentType = "text/html"
		content, err = buildChoropleth(snapshots, req)
	default:
		return nil, newRenderError(ErrUnsupportedChart, req, "", string(req.Kind))
	}
	if err != nil {
		var renderErr *RenderError
		if errors.As(err, &renderErr) {
			return nil, renderErr
		}
		return nil, newRenderError(ErrWriteFigure, req, "", err.Error())
	}

	path := filepath.Join(s.outputDir, req.FileName)
	if err := writeFile(path, content); err != nil {
		return nil, newRenderError(ErrWriteFigure, req, "", err.Error())
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"stage":       "rendering",
		"path":        path,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Gráfico gerado")

	return &domain.Figure{
		Name:        req.FileName,
		Kind:        string(req.Kind),
		Path:        path,
		ContentType: contentType,
		Bytes:       int64(len(content)),
	}, nil
}

// DefaultRequests são os gráficos gerados em toda execução
func DefaultRequests(window int) []ChartRequest {
	return []ChartRequest{
		{
			Kind:     ChartLine,
			Metric:   domain.MetricConfirmedCases,
			Title:    "Total COVID-19 Cases",
			YLabel:   "Total Cases",
			LogScale: true,
			FileName: "total_cases.png",
		},
		{
			Kind:     ChartLine,
			Metric:   domain.MetricNewCasesRollingAvg,
			Title:    fmt.Sprintf("Daily New Cases (%d-day rolling average)", window),
			YLabel:   "New Cases",
			FileName: "new_cases.png",
		},
		{
			Kind:     ChartLine,
			Metric:   domain.MetricFullVaccinationRate,
			Title:    "Vaccination Progress",
			YLabel:   "% of Population Fully Vaccinated",
			Percent:  true,
			FileName: "vaccination_progress.png",
		},
		{
			Kind:     ChartBar,
			Metric:   domain.MetricDeathRate,
			Title:    "Death Rate by Country",
			YLabel:   "Deaths / Confirmed Cases (%)",
			Percent:  true,
			FileName: "death_rate_comparison.png",
		},
		{
			Kind:     ChartChoropleth,
			Metric:   domain.MetricFullVaccinationRate,
			Title:    "Global Vaccination Progress",
			YLabel:   "% Fully Vaccinated",
			Percent:  true,
			FileName: "vaccination_map.html",
		},
	}
}

// RenderDefaults gera o conjunto padrão de figuras. Um gráfico sem dados
// (ex.: nenhum país com vacinação) é pulado com aviso; qualquer outro erro
// interrompe, assim como não sobrar nenhum gráfico.
func (s *Service) RenderDefaults(ctx context.Context, ms *domain.MetricSet, snapshots []domain.Snapshot) ([]domain.Figure, error) {
	logger := log.ForContext(ctx)
	figures := make([]domain.Figure, 0)

	for _, req := range DefaultRequests(ms.Window) {
		figure, err := s.Render(ctx, ms, snapshots, req)
		if errors.Is(err, ErrEmptySelection) {
			logger.WithFields(log.Fields{
				"path":  req.FileName,
				"error": err.Error(),
			}).Warn("Gráfico ignorado por falta de dados")
			continue
		}
		if err != nil {
			return nil, err
		}
		figures = append(figures, *figure)
	}

	if len(figures) == 0 {
		return nil, &RenderError{Err: ErrEmptySelection, Details: "nenhum gráfico pôde ser gerado"}
	}

	return figures, nil
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}
