package loading

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/utils"
)

const (
	columnCountry = "country"
	columnDate    = "date"
	columnISOCode = "iso_code"
	columnCont    = "continent"
)

// Nomes aceitos para cada coluna canônica (o primeiro é o nome canônico)
var columnAliases = map[string][]string{
	columnCountry:                       {"country", "location", "country_region"},
	columnDate:                          {"date"},
	columnISOCode:                       {"iso_code"},
	columnCont:                          {"continent"},
	string(domain.FieldConfirmedCases):  {"confirmed_cases", "total_cases", "confirmed"},
	string(domain.FieldNewCases):        {"new_cases"},
	string(domain.FieldDeaths):          {"deaths", "total_deaths"},
	string(domain.FieldVaccinated):      {"vaccinated", "people_vaccinated"},
	string(domain.FieldFullyVaccinated): {"fully_vaccinated", "people_fully_vaccinated"},
	string(domain.FieldPopulation):      {"population"},
}

var requiredColumns = []string{
	columnCountry,
	columnDate,
	string(domain.FieldConfirmedCases),
	string(domain.FieldDeaths),
	string(domain.FieldVaccinated),
}

var missingMarkers = map[string]bool{
	"":      true,
	"NA":    true,
	"NaN":   true,
	"nan":   true,
	"<nil>": true,
}

// normalizeHeader deixa o nome da coluna em snake_case minúsculo
func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "\ufeff")
	replacer := strings.NewReplacer(" ", "_", "-", "_", ".", "_")
	return replacer.Replace(name)
}

// mapColumns associa cada coluna canônica ao nome original no cabeçalho
func mapColumns(headers []string) (map[string]string, error) {
	normalized := make(map[string]string, len(headers))
	for _, h := range headers {
		key := normalizeHeader(h)
		if _, exists := normalized[key]; !exists {
			normalized[key] = h
		}
	}

	mapping := make(map[string]string)
	for canonical, aliases := range columnAliases {
		for _, alias := range aliases {
			if original, ok := normalized[alias]; ok {
				mapping[canonical] = original
				break
			}
		}
	}

	missing := make([]string, 0)
	for _, col := range requiredColumns {
		if _, ok := mapping[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		err := newParseError(1, strings.Join(missing, ","), "", "colunas obrigatórias ausentes")
		return nil, err
	}

	return mapping, nil
}

// parseCSV converte o conteúdo bruto em registros. Não filtra nada: cada linha
// de dados vira exatamente um registro.
func parseCSV(data []byte, delimiter rune) ([]domain.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newParseError(0, "", "", "arquivo vazio")
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(delimiter),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"NA", "NaN", "<nil>"}),
	)
	if df.Err != nil {
		return parseFailure(data, delimiter, df.Err)
	}

	mapping, err := mapColumns(df.Names())
	if err != nil {
		return nil, err
	}

	columns := make(map[string][]string, len(mapping))
	for canonical, original := range mapping {
		columns[canonical] = df.Col(original).Records()
	}

	records := make([]domain.Record, df.Nrow())
	for i := range records {
		record, err := buildRecord(columns, i)
		if err != nil {
			return nil, err
		}
		records[i] = record
	}

	return records, nil
}

// parseFailure trata os erros do gota: CSV malformado ou arquivo só com cabeçalho
func parseFailure(data []byte, delimiter rune, cause error) ([]domain.Record, error) {
	var csvErr *csv.ParseError
	if errors.As(cause, &csvErr) {
		return nil, newParseError(csvErr.Line, "", "", csvErr.Err.Error())
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	header, err := reader.Read()
	if err != nil {
		return nil, newParseError(1, "", "", err.Error())
	}
	if _, err := reader.Read(); err == nil {
		return nil, newParseError(0, "", "", cause.Error())
	}

	// Só cabeçalho: conjunto vazio, desde que as colunas estejam presentes
	if _, err := mapColumns(header); err != nil {
		return nil, err
	}
	return []domain.Record{}, nil
}

func buildRecord(columns map[string][]string, row int) (domain.Record, error) {
	line := row + 2
	value := func(col string) string {
		values, ok := columns[col]
		if !ok {
			return ""
		}
		return strings.TrimSpace(values[row])
	}

	var record domain.Record

	record.Country = value(columnCountry)
	if missingMarkers[record.Country] {
		return record, newParseError(line, columnCountry, record.Country, "país vazio")
	}

	rawDate := value(columnDate)
	date, err := utils.ParseFlexibleDate(rawDate)
	if err != nil {
		return record, newParseError(line, columnDate, rawDate, "data inválida")
	}
	record.Date = date

	record.ISOCode = cleanText(value(columnISOCode))
	record.Continent = cleanText(value(columnCont))

	for _, field := range domain.AllCountFields {
		raw := value(string(field))
		count, err := parseCount(raw)
		if err != nil {
			return record, newParseError(line, string(field), raw, err.Error())
		}
		record = record.WithCount(field, count)
	}

	return record, nil
}

func cleanText(s string) string {
	if missingMarkers[s] {
		return ""
	}
	return s
}

var (
	errNotANumber    = errors.New("número inválido")
	errNegativeCount = errors.New("contagem negativa")
)

// parseCount aceita inteiros e notação de ponto flutuante ("1234.0"),
// arredondando para o inteiro mais próximo
func parseCount(raw string) (sql.NullInt64, error) {
	if missingMarkers[raw] {
		return sql.NullInt64{}, nil
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if v < 0 {
			return sql.NullInt64{}, errNegativeCount
		}
		return domain.Count(v), nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return sql.NullInt64{}, errNotANumber
	}
	if math.IsNaN(f) {
		return sql.NullInt64{}, nil
	}
	if f < 0 {
		return sql.NullInt64{}, errNegativeCount
	}
	// float64(math.MaxInt64) é 2^63, que já não cabe em int64
	if math.Round(f) >= math.MaxInt64 {
		return sql.NullInt64{}, errNotANumber
	}
	return domain.Count(int64(math.Round(f))), nil
}
