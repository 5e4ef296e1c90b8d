// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/covid-insights/infrastructure/database/postgres"
	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/utils"
)

const defaultRecordTable = "covid_records"

var recordColumns = []string{
	"country",
	"iso_code",
	"continent",
	"date",
	"confirmed_cases",
	"new_cases",
	"deaths",
	"vaccinated",
	"fully_vaccinated",
	"population",
}

// RecordFilters restringe a consulta no próprio banco
type RecordFilters struct {
	Countries []string
	StartDate *time.Time
	EndDate   *time.Time
}

type RecordRepository interface {
	ListRecords(ctx context.Context, filters RecordFilters) ([]domain.Record, error)
}

type recordRepository struct {
	conn  postgres.Queryer
	table string
}

func NewRecordRepository(conn postgres.Queryer, table string) RecordRepository {
	if table == "" {
		table = defaultRecordTable
	}
	return &recordRepository{
		conn:  conn,
		table: table,
	}
}

func (r *recordRepository) ListRecords(ctx context.Context, filters RecordFilters) ([]domain.Record, error) {
	query, args, err := buildListRecordsQuery(r.table, filters)
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear registro: %w", err)
		}
		records = append(records, *record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return records, nil
}

func buildListRecordsQuery(table string, filters RecordFilters) (string, []interface{}, error) {
	queryBuilder := squirrel.
		Select(recordColumns...).
		From(table).
		OrderBy("country ASC", "date ASC").
		PlaceholderFormat(squirrel.Dollar)

	// Mesma regra da limpeza: país sem diferenciar maiúsculas
	if len(filters.Countries) > 0 {
		countries := make([]string, 0, len(filters.Countries))
		for _, c := range filters.Countries {
			countries = append(countries, strings.ToLower(strings.TrimSpace(c)))
		}
		queryBuilder = queryBuilder.Where(squirrel.Eq{"LOWER(country)": countries})
	}
	if filters.StartDate != nil {
		queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"date": filters.StartDate.Format(time.DateOnly)})
	}
	if filters.EndDate != nil {
		queryBuilder = queryBuilder.Where(squirrel.LtOrEq{"date": filters.EndDate.Format(time.DateOnly)})
	}

	return queryBuilder.ToSql()
}

func scanRecord(rows *sql.Rows) (*domain.Record, error) {
	var (
		record    domain.Record
		isoCode   sql.NullString
		continent sql.NullString
	)

	err := rows.Scan(
		&record.Country,
		&isoCode,
		&continent,
		&record.Date,
		&record.ConfirmedCases,
		&record.NewCases,
		&record.Deaths,
		&record.Vaccinated,
		&record.FullyVaccinated,
		&record.Population,
	)
	if err != nil {
		return nil, err
	}

	record.ISOCode = isoCode.String
	record.Continent = continent.String
	record.Date = utils.TruncateToDay(record.Date)

	return &record, nil
}
