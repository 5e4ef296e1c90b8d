// Package reporting escreve o resumo em Markdown da execução
package reporting

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/log"
	"github.com/vfg2006/covid-insights/pkg/utils"
)

const ReportFileName = "insights.md"

// Ranker é a parte do analisador usada para escolher maiores e menores valores
type Ranker interface {
	Rank(snapshots []domain.Snapshot, metric string, previous []domain.Ranking) ([]domain.Ranking, error)
}

type Reporter interface {
	Write(ctx context.Context, input Input) (*domain.Figure, error)
}

type Input struct {
	Snapshots   []domain.Snapshot
	Source      string
	Fingerprint string
	FirstDate   time.Time
	LastDate    time.Time
}

type Service struct {
	dir    string
	ranker Ranker
}

func NewService(dir string, ranker Ranker) *Service {
	return &Service{dir: dir, ranker: ranker}
}

type highlight struct {
	Country string
	Value   string
}

type reportData struct {
	AsOf           string
	Period         string
	Source         string
	Fingerprint    string
	Countries      int
	HighestCases   highlight
	LowestVaccine  highlight
	MostVaccinated highlight
	AverageVaccine string
	HighestDeath   highlight
	LowestDeath    highlight
	CaseRanking    []rankingRow
}

type rankingRow struct {
	Position int
	Country  string
	Value    string
}

var reportTemplate = template.Must(template.New("insights").Parse(`### COVID-19 Analysis Insights (as of {{.AsOf}})

Source: {{.Source}} (fingerprint ` + "`{{.Fingerprint}}`" + `)
Period: {{.Period}}, {{.Countries}} countries

1. **Case Trends**:
   - Highest total cases: {{.HighestCases.Country}} ({{.HighestCases.Value}})
   - Lowest vaccination rate: {{.LowestVaccine.Country}} ({{.LowestVaccine.Value}})

2. **Vaccination Progress**:
   - Most vaccinated: {{.MostVaccinated.Country}} ({{.MostVaccinated.Value}})
   - Average vaccination rate: {{.AverageVaccine}}

3. **Mortality**:
   - Highest death rate: {{.HighestDeath.Country}} ({{.HighestDeath.Value}})
   - Lowest death rate: {{.LowestDeath.Country}} ({{.LowestDeath.Value}})
{{if .CaseRanking}}
4. **Total Cases Ranking**:

| # | Country | Total cases |
|---|---------|-------------|
{{range .CaseRanking}}| {{.Position}} | {{.Country}} | {{.Value}} |
{{end}}{{end}}`))

func (s *Service) Write(ctx context.Context, input Input) (*domain.Figure, error) {
	data, err := s.buildData(input)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("erro ao montar o relatório: %w", err)
	}

	path := filepath.Join(s.dir, ReportFileName)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"stage": "reporting",
		"path":  path,
	}).Info("Relatório gerado")

	return &domain.Figure{
		Name:        ReportFileName,
		Kind:        domain.FigureKindReport,
		Path:        path,
		ContentType: "text/markdown",
		Bytes:       int64(buf.Len()),
	}, nil
}

func (s *Service) buildData(input Input) (*reportData, error) {
	cases, err := s.ranker.Rank(input.Snapshots, domain.MetricConfirmedCases, nil)
	if err != nil {
		return nil, err
	}
	vaccination, err := s.ranker.Rank(input.Snapshots, domain.MetricFullVaccinationRate, nil)
	if err != nil {
		return nil, err
	}
	deaths, err := s.ranker.Rank(input.Snapshots, domain.MetricDeathRate, nil)
	if err != nil {
		return nil, err
	}

	asOf := input.LastDate
	for _, snap := range input.Snapshots {
		if snap.Date.After(asOf) {
			asOf = snap.Date
		}
	}

	data := &reportData{
		AsOf:           formatDate(asOf),
		Period:         formatDate(input.FirstDate) + " to " + formatDate(input.LastDate),
		Source:         input.Source,
		Fingerprint:    shortFingerprint(input.Fingerprint),
		Countries:      len(input.Snapshots),
		HighestCases:   first(cases, formatCases),
		LowestVaccine:  last(vaccination, formatPercent(1)),
		MostVaccinated: first(vaccination, formatPercent(1)),
		AverageVaccine: "n/a",
		HighestDeath:   first(deaths, formatPercent(2)),
		LowestDeath:    last(deaths, formatPercent(2)),
	}

	for _, r := range cases {
		data.CaseRanking = append(data.CaseRanking, rankingRow{
			Position: r.Position,
			Country:  r.Country,
			Value:    formatCases(r.Value),
		})
	}

	if len(vaccination) > 0 {
		sum := 0.0
		for _, r := range vaccination {
			sum += r.Value
		}
		data.AverageVaccine = formatPercent(1)(sum / float64(len(vaccination)))
	}

	return data, nil
}

func first(rankings []domain.Ranking, format func(float64) string) highlight {
	if len(rankings) == 0 {
		return highlight{Country: "n/a", Value: "no data"}
	}
	return highlight{Country: rankings[0].Country, Value: format(rankings[0].Value)}
}

func last(rankings []domain.Ranking, format func(float64) string) highlight {
	if len(rankings) == 0 {
		return highlight{Country: "n/a", Value: "no data"}
	}
	r := rankings[len(rankings)-1]
	return highlight{Country: r.Country, Value: format(r.Value)}
}

func formatCases(v float64) string {
	return utils.FormatThousands(int64(v))
}

// formatPercent formata frações (0.123) como porcentagem ("12.3%")
func formatPercent(decimals int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f%%", decimals, v*100)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format(time.DateOnly)
}

func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}
