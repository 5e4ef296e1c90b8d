package rendering

import (
	"strings"

	"github.com/vfg2006/covid-insights/internal/domain"
)

type ChartKind string

const (
	ChartLine       ChartKind = "line"
	ChartBar        ChartKind = "bar"
	ChartChoropleth ChartKind = "choropleth"
)

// ChartRequest descreve um gráfico a ser gerado
type ChartRequest struct {
	Kind      ChartKind
	Metric    string
	Countries []string
	Title     string
	YLabel    string
	LogScale  bool
	Percent   bool
	FileName  string
}

// Paleta usada para as linhas, na ordem dos países
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

type lineSeries struct {
	Name   string
	Color  string
	Points domain.Series
}

type barValue struct {
	Label string
	Value float64
}

func (r ChartRequest) withDefaults() ChartRequest {
	if r.FileName == "" {
		ext := ".png"
		if r.Kind == ChartChoropleth {
			ext = ".html"
		}
		r.FileName = r.Metric + ext
	}
	if r.Title == "" {
		r.Title = humanize(r.Metric)
	}
	if r.YLabel == "" {
		r.YLabel = humanize(r.Metric)
		if r.Percent {
			r.YLabel += " (%)"
		}
	}
	return r
}

func humanize(metric string) string {
	words := strings.Split(metric, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func isKnownMetric(name string) bool {
	for _, m := range domain.MetricNames {
		if m == name {
			return true
		}
	}
	return false
}

// selectLines resolve os países pedidos e as séries da métrica
func selectLines(ms *domain.MetricSet, req ChartRequest) ([]lineSeries, error) {
	if ms.Len() == 0 && isKnownMetric(req.Metric) {
		return nil, newRenderError(ErrEmptySelection, req, "", "nenhuma série calculada")
	}
	if !ms.HasMetric(req.Metric) {
		return nil, newRenderError(ErrUnknownMetric, req, "", "")
	}

	countries := req.Countries
	if len(countries) == 0 {
		countries = ms.Countries()
	}

	lines := make([]lineSeries, 0, len(countries))
	hasPoints := false
	for i, country := range countries {
		if !ms.HasCountry(country) {
			return nil, newRenderError(ErrUnknownCountry, req, country, "")
		}

		series, _ := ms.Series(country, req.Metric)
		if req.Percent {
			for j := range series {
				series[j].Value *= 100
			}
		}
		for _, p := range series {
			if p.Defined && (!req.LogScale || p.Value > 0) {
				hasPoints = true
				break
			}
		}

		lines = append(lines, lineSeries{
			Name:   country,
			Color:  defaultColors[i%len(defaultColors)],
			Points: series,
		})
	}

	if !hasPoints {
		return nil, newRenderError(ErrEmptySelection, req, "", "nenhum ponto definido")
	}

	return lines, nil
}

// selectBars usa o valor mais recente de cada país
func selectBars(snapshots []domain.Snapshot, req ChartRequest) ([]barValue, error) {
	if !isKnownMetric(req.Metric) {
		return nil, newRenderError(ErrUnknownMetric, req, "", "")
	}

	selected, err := selectSnapshots(snapshots, req)
	if err != nil {
		return nil, err
	}

	bars := make([]barValue, 0, len(selected))
	for _, snap := range selected {
		value, ok := snap.Metric(req.Metric)
		if !ok {
			continue
		}
		if req.Percent {
			value *= 100
		}
		bars = append(bars, barValue{Label: snap.Country, Value: value})
	}

	if len(bars) == 0 {
		return nil, newRenderError(ErrEmptySelection, req, "", "nenhum país com valor definido")
	}

	return bars, nil
}
