package domain

import (
	"sort"
	"strings"
	"time"
)

// Dataset é a coleção de registros ordenada por país e data.
// Depois de construído não é mais alterado; os acessores devolvem cópias.
type Dataset struct {
	records []Record
	index   map[string][2]int
}

// NewDataset ordena os registros por (país, data) mantendo a ordem original
// entre chaves iguais
func NewDataset(records []Record) *Dataset {
	sorted := make([]Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Country != sorted[j].Country {
			return sorted[i].Country < sorted[j].Country
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	index := make(map[string][2]int)
	for i, r := range sorted {
		bounds, exists := index[r.Country]
		if !exists {
			bounds[0] = i
		}
		bounds[1] = i + 1
		index[r.Country] = bounds
	}

	return &Dataset{records: sorted, index: index}
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records retorna uma cópia de todos os registros
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Countries retorna os países presentes em ordem alfabética
func (d *Dataset) Countries() []string {
	if d == nil {
		return nil
	}
	countries := make([]string, 0, len(d.index))
	for country := range d.index {
		countries = append(countries, country)
	}
	sort.Strings(countries)
	return countries
}

// HasCountry verifica a presença do país (sem diferenciar maiúsculas)
func (d *Dataset) HasCountry(country string) bool {
	_, ok := d.resolve(country)
	return ok
}

// Series retorna os registros de um país em ordem de data
func (d *Dataset) Series(country string) []Record {
	name, ok := d.resolve(country)
	if !ok {
		return nil
	}
	bounds := d.index[name]
	out := make([]Record, bounds[1]-bounds[0])
	copy(out, d.records[bounds[0]:bounds[1]])
	return out
}

// DateRange retorna a primeira e a última data do conjunto
func (d *Dataset) DateRange() (time.Time, time.Time) {
	var first, last time.Time
	if d == nil {
		return first, last
	}
	for _, r := range d.records {
		if first.IsZero() || r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}

func (d *Dataset) resolve(country string) (string, bool) {
	if d == nil {
		return "", false
	}
	if _, ok := d.index[country]; ok {
		return country, true
	}
	for name := range d.index {
		if strings.EqualFold(name, country) {
			return name, true
		}
	}
	return "", false
}
