// Package domain contém as estruturas de dados do domínio da aplicação
package domain

import (
	"database/sql"
	"time"
)

// Record é uma linha do conjunto de dados: um país em um dia
type Record struct {
	Country         string        `json:"country"`
	ISOCode         string        `json:"iso_code,omitempty"`
	Continent       string        `json:"continent,omitempty"`
	Date            time.Time     `json:"date"`
	ConfirmedCases  sql.NullInt64 `json:"confirmed_cases"`
	NewCases        sql.NullInt64 `json:"new_cases"`
	Deaths          sql.NullInt64 `json:"deaths"`
	Vaccinated      sql.NullInt64 `json:"vaccinated"`
	FullyVaccinated sql.NullInt64 `json:"fully_vaccinated"`
	Population      sql.NullInt64 `json:"population"`
}

// CountField identifica uma das colunas numéricas do Record
type CountField string

const (
	FieldConfirmedCases  CountField = "confirmed_cases"
	FieldNewCases        CountField = "new_cases"
	FieldDeaths          CountField = "deaths"
	FieldVaccinated      CountField = "vaccinated"
	FieldFullyVaccinated CountField = "fully_vaccinated"
	FieldPopulation      CountField = "population"
)

// RequiredCountFields são os campos numéricos que todo registro limpo deve ter
var RequiredCountFields = []CountField{FieldConfirmedCases, FieldDeaths, FieldVaccinated}

// AllCountFields lista todos os campos numéricos na ordem do arquivo
var AllCountFields = []CountField{
	FieldConfirmedCases,
	FieldNewCases,
	FieldDeaths,
	FieldVaccinated,
	FieldFullyVaccinated,
	FieldPopulation,
}

// Count retorna o valor do campo numérico informado
func (r Record) Count(field CountField) sql.NullInt64 {
	switch field {
	case FieldConfirmedCases:
		return r.ConfirmedCases
	case FieldNewCases:
		return r.NewCases
	case FieldDeaths:
		return r.Deaths
	case FieldVaccinated:
		return r.Vaccinated
	case FieldFullyVaccinated:
		return r.FullyVaccinated
	case FieldPopulation:
		return r.Population
	}
	return sql.NullInt64{}
}

// WithCount devolve uma cópia do registro com o campo substituído
func (r Record) WithCount(field CountField, value sql.NullInt64) Record {
	switch field {
	case FieldConfirmedCases:
		r.ConfirmedCases = value
	case FieldNewCases:
		r.NewCases = value
	case FieldDeaths:
		r.Deaths = value
	case FieldVaccinated:
		r.Vaccinated = value
	case FieldFullyVaccinated:
		r.FullyVaccinated = value
	case FieldPopulation:
		r.Population = value
	}
	return r
}

// HasRequiredFields informa se os campos obrigatórios estão presentes
func (r Record) HasRequiredFields() bool {
	if r.Country == "" || r.Date.IsZero() {
		return false
	}
	for _, field := range RequiredCountFields {
		if !r.Count(field).Valid {
			return false
		}
	}
	return true
}

// IsAggregate indica linhas agregadas do OWID (continentes, mundo, faixas de renda)
func (r Record) IsAggregate() bool {
	return len(r.ISOCode) > 5 && r.ISOCode[:5] == "OWID_"
}

func Count(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}
