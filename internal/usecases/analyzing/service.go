// Package analyzing calcula as métricas derivadas por país e a comparação entre países
package analyzing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vfg2006/covid-insights/internal/config"
	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/log"
)

const DefaultWindow = 7

var ErrUnknownMetric = errors.New("unknown metric")

type Analyzer interface {
	Analyze(ctx context.Context, ds *domain.Dataset) (*domain.MetricSet, error)
	Snapshots(ds *domain.Dataset, ms *domain.MetricSet) []domain.Snapshot
	Rank(snapshots []domain.Snapshot, metric string, previous []domain.Ranking) ([]domain.Ranking, error)
}

type Service struct {
	window int
}

func NewService(window int) (*Service, error) {
	if window < 1 {
		return nil, config.NewConfigError("ROLLING_WINDOW", fmt.Sprint(window), "janela deve ser maior que zero")
	}
	return &Service{window: window}, nil
}

func (s *Service) Window() int {
	return s.window
}

func (s *Service) Analyze(ctx context.Context, ds *domain.Dataset) (*domain.MetricSet, error) {
	ms := domain.NewMetricSet(s.window)

	for _, country := range ds.Countries() {
		records := ds.Series(country)

		confirmed := countSeries(records, domain.FieldConfirmedCases)
		newCases := newCasesSeries(records, confirmed)

		ms.Put(country, domain.MetricConfirmedCases, confirmed)
		ms.Put(country, domain.MetricDeaths, countSeries(records, domain.FieldDeaths))
		ms.Put(country, domain.MetricNewCases, newCases)
		ms.Put(country, domain.MetricConfirmedCasesRollingAvg, RollingMean(confirmed, s.window))
		ms.Put(country, domain.MetricNewCasesRollingAvg, RollingMean(newCases, s.window))
		ms.Put(country, domain.MetricDeathRate, ratioSeries(records, domain.FieldDeaths, domain.FieldConfirmedCases, true))
		ms.Put(country, domain.MetricVaccinationRate, ratioSeries(records, domain.FieldVaccinated, domain.FieldPopulation, false))
		ms.Put(country, domain.MetricFullVaccinationRate, ratioSeries(records, domain.FieldFullyVaccinated, domain.FieldPopulation, false))
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"stage": "analyzing",
		"rows":  ms.Len(),
	}).Info("Métricas calculadas")

	return ms, nil
}

func countSeries(records []domain.Record, field domain.CountField) domain.Series {
	out := make(domain.Series, len(records))
	for i, r := range records {
		value := r.Count(field)
		if !value.Valid {
			out[i] = domain.UndefinedPoint(r.Date)
			continue
		}
		out[i] = domain.DefinedPoint(r.Date, float64(value.Int64))
	}
	return out
}

// newCasesSeries usa a coluna new_cases quando o país a possui; caso
// contrário, a diferença diária dos casos confirmados (primeiro dia indefinido)
func newCasesSeries(records []domain.Record, confirmed domain.Series) domain.Series {
	for _, r := range records {
		if r.NewCases.Valid {
			return countSeries(records, domain.FieldNewCases)
		}
	}

	out := make(domain.Series, len(confirmed))
	for i, p := range confirmed {
		if i == 0 || !p.Defined || !confirmed[i-1].Defined {
			out[i] = domain.UndefinedPoint(p.Date)
			continue
		}
		out[i] = domain.DefinedPoint(p.Date, p.Value-confirmed[i-1].Value)
	}
	return out
}

// RollingMean é a média móvel à direita: cada ponto fica na data do último
// dia da janela e a série resultante tem len(s)-(window-1) pontos
func RollingMean(s domain.Series, window int) domain.Series {
	if window < 1 || len(s) < window {
		return domain.Series{}
	}

	out := make(domain.Series, 0, len(s)-window+1)
	for end := window - 1; end < len(s); end++ {
		sum := 0.0
		defined := true
		for _, p := range s[end-window+1 : end+1] {
			if !p.Defined {
				defined = false
				break
			}
			sum += p.Value
		}

		if !defined {
			out = append(out, domain.UndefinedPoint(s[end].Date))
			continue
		}
		out = append(out, domain.DefinedPoint(s[end].Date, sum/float64(window)))
	}
	return out
}

// ratioSeries divide numerador por denominador. Denominador zero ou ausente
// gera ponto indefinido; com bounded, numerador maior que o denominador também.
func ratioSeries(records []domain.Record, numerator, denominator domain.CountField, bounded bool) domain.Series {
	out := make(domain.Series, len(records))
	for i, r := range records {
		num := r.Count(numerator)
		den := r.Count(denominator)

		if !num.Valid || !den.Valid || den.Int64 == 0 || (bounded && num.Int64 > den.Int64) {
			out[i] = domain.UndefinedPoint(r.Date)
			continue
		}
		out[i] = domain.DefinedPoint(r.Date, float64(num.Int64)/float64(den.Int64))
	}
	return out
}

// Snapshots devolve o último registro de cada país com os últimos valores
// definidos de cada métrica
func (s *Service) Snapshots(ds *domain.Dataset, ms *domain.MetricSet) []domain.Snapshot {
	countries := ds.Countries()
	snapshots := make([]domain.Snapshot, 0, len(countries))

	for _, country := range countries {
		records := ds.Series(country)
		if len(records) == 0 {
			continue
		}
		latest := records[len(records)-1]

		metrics := make(map[string]float64)
		for _, name := range domain.MetricNames {
			if p, ok := ms.Latest(country, name); ok {
				metrics[name] = p.Value
			}
		}

		snapshots = append(snapshots, domain.Snapshot{
			Country:   country,
			ISOCode:   latest.ISOCode,
			Continent: latest.Continent,
			Date:      latest.Date,
			Record:    latest,
			Metrics:   metrics,
		})
	}

	return snapshots
}

// Rank ordena os países pela métrica (maior primeiro, empate em ordem
// alfabética). Países sem valor definido ficam de fora.
func (s *Service) Rank(snapshots []domain.Snapshot, metric string, previous []domain.Ranking) ([]domain.Ranking, error) {
	if !isKnownMetric(metric) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	rankings := make([]*domain.Ranking, 0, len(snapshots))
	for _, snap := range snapshots {
		value, ok := snap.Metric(metric)
		if !ok {
			continue
		}
		rankings = append(rankings, &domain.Ranking{
			Country: snap.Country,
			Metric:  metric,
			Value:   value,
		})
	}

	before := make(map[string]*domain.Ranking, len(previous))
	for i := range previous {
		if previous[i].Metric == "" || previous[i].Metric == metric {
			before[previous[i].Country] = &previous[i]
		}
	}

	updatePositions(rankings, before)

	out := make([]domain.Ranking, len(rankings))
	for i, r := range rankings {
		out[i] = *r
	}
	return out, nil
}

func updatePositions(
	updatedRankings []*domain.Ranking,
	rankingsBeforeUpdate map[string]*domain.Ranking,
) {
	sort.Slice(updatedRankings, func(i, j int) bool {
		if updatedRankings[i].Value != updatedRankings[j].Value {
			return updatedRankings[i].Value > updatedRankings[j].Value
		}
		return updatedRankings[i].Country < updatedRankings[j].Country
	})

	for i, ranking := range updatedRankings {
		ranking.Position = i + 1

		rankingBefore, exists := rankingsBeforeUpdate[ranking.Country]
		if exists {
			ranking.PositionChange = rankingBefore.Position - ranking.Position
			ranking.PreviousPosition = rankingBefore.Position
		}
	}
}

func isKnownMetric(name string) bool {
	for _, m := range domain.MetricNames {
		if m == name {
			return true
		}
	}
	return false
}
