// Package cleaning filtra o conjunto de dados e trata valores ausentes
package cleaning

import (
	"context"
	"strings"
	"time"

	"github.com/vfg2006/covid-insights/internal/config"
	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/log"
)

type Options struct {
	Countries     []string
	Start         *time.Time
	End           *time.Time
	MissingPolicy string
}

// OptionsFromConfig monta as opções de limpeza a partir da configuração
func OptionsFromConfig(cfg config.Cleaning) Options {
	return Options{
		Countries:     cfg.Countries,
		Start:         cfg.StartDate,
		End:           cfg.EndDate,
		MissingPolicy: cfg.MissingPolicy,
	}
}

type Cleaner interface {
	Clean(ctx context.Context, ds *domain.Dataset, opts Options) (*domain.Dataset, error)
}

type Service struct{}

func NewService() Cleaner {
	return &Service{}
}

// Clean devolve um novo Dataset; o de entrada não é alterado
func (s *Service) Clean(ctx context.Context, ds *domain.Dataset, opts Options) (*domain.Dataset, error) {
	logger := log.ForContext(ctx)

	policy, err := validate(opts)
	if err != nil {
		return nil, err
	}

	filtered := filter(ds.Records(), opts)
	deduped, duplicates := dedupe(filtered)
	if duplicates > 0 {
		logger.WithField("rows", duplicates).Warn("Registros duplicados para o mesmo país e data; mantido o último")
	}

	var cleaned []domain.Record
	switch policy {
	case config.MissingPolicyDrop:
		cleaned = dropIncomplete(deduped)
	default:
		cleaned = forwardFill(deduped)
	}

	if violations := countDeathViolations(cleaned); violations > 0 {
		logger.WithField("rows", violations).Warn("Registros com mais óbitos que casos confirmados")
	}

	result := domain.NewDataset(cleaned)
	warnMissingCountries(logger, result, opts.Countries)

	logger.WithFields(log.Fields{
		"stage": "cleaning",
		"rows":  result.Len(),
	}).Infof("Limpeza concluída (%d de %d registros mantidos)", result.Len(), ds.Len())

	return result, nil
}

func validate(opts Options) (string, error) {
	policy := strings.ToLower(strings.TrimSpace(opts.MissingPolicy))
	if policy == "" {
		policy = config.MissingPolicyFFill
	}
	if policy != config.MissingPolicyDrop && policy != config.MissingPolicyFFill {
		return "", config.NewConfigError("MISSING_POLICY", opts.MissingPolicy, "use drop ou ffill")
	}

	if opts.Start != nil && opts.End != nil && opts.Start.After(*opts.End) {
		return "", config.NewConfigError(
			"START_DATE",
			opts.Start.Format(time.DateOnly),
			"data inicial posterior à data final "+opts.End.Format(time.DateOnly),
		)
	}

	return policy, nil
}

// filter aplica país e intervalo de datas (inclusivo). Sem lista de países,
// mantém todos exceto as linhas agregadas do OWID.
func filter(records []domain.Record, opts Options) []domain.Record {
	wanted := make(map[string]bool, len(opts.Countries))
	for _, c := range opts.Countries {
		wanted[strings.ToLower(strings.TrimSpace(c))] = true
	}

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if len(wanted) > 0 {
			if !wanted[strings.ToLower(r.Country)] {
				continue
			}
		} else if r.IsAggregate() {
			continue
		}

		if opts.Start != nil && r.Date.Before(*opts.Start) {
			continue
		}
		if opts.End != nil && r.Date.After(*opts.End) {
			continue
		}

		out = append(out, r)
	}
	return out
}

// dedupe mantém o último registro de cada (país, data). Os registros chegam
// ordenados por país e data com a ordem do arquivo preservada entre iguais.
func dedupe(records []domain.Record) ([]domain.Record, int) {
	out := make([]domain.Record, 0, len(records))
	duplicates := 0
	for _, r := range records {
		n := len(out)
		if n > 0 && out[n-1].Country == r.Country && out[n-1].Date.Equal(r.Date) {
			out[n-1] = r
			duplicates++
			continue
		}
		out = append(out, r)
	}
	return out, duplicates
}

func dropIncomplete(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r.HasRequiredFields() {
			out = append(out, r)
		}
	}
	return out
}

// forwardFill repete o último valor válido de cada país; sem observação
// anterior o valor vira zero. Campos opcionais nunca observados no país
// (ex.: new_cases ausente do arquivo) continuam ausentes.
func forwardFill(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))

	for start := 0; start < len(records); {
		end := start
		for end < len(records) && records[end].Country == records[start].Country {
			end++
		}
		out = append(out, fillCountry(records[start:end])...)
		start = end
	}

	return out
}

func fillCountry(series []domain.Record) []domain.Record {
	observed := make(map[domain.CountField]bool)
	for _, r := range series {
		for _, field := range domain.AllCountFields {
			if r.Count(field).Valid {
				observed[field] = true
			}
		}
	}

	last := make(map[domain.CountField]int64)
	out := make([]domain.Record, 0, len(series))
	for _, r := range series {
		for _, field := range domain.AllCountFields {
			value := r.Count(field)
			if value.Valid {
				last[field] = value.Int64
				continue
			}
			if !observed[field] && !isRequired(field) {
				continue
			}
			r = r.WithCount(field, domain.Count(last[field]))
		}
		out = append(out, r)
	}
	return out
}

func isRequired(field domain.CountField) bool {
	for _, f := range domain.RequiredCountFields {
		if f == field {
			return true
		}
	}
	return false
}

func countDeathViolations(records []domain.Record) int {
	violations := 0
	for _, r := range records {
		if r.Deaths.Valid && r.ConfirmedCases.Valid && r.Deaths.Int64 > r.ConfirmedCases.Int64 {
			violations++
		}
	}
	return violations
}

func warnMissingCountries(logger log.Logger, ds *domain.Dataset, countries []string) {
	for _, c := range countries {
		if !ds.HasCountry(c) {
			logger.WithField("country", c).Warn("País solicitado não encontrado nos dados")
		}
	}
}
