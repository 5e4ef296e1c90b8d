package domain

import (
	"sort"
	"strings"
	"time"
)

// Nomes das métricas calculadas pelo analisador
const (
	MetricConfirmedCases           = "confirmed_cases"
	MetricDeaths                   = "deaths"
	MetricNewCases                 = "new_cases"
	MetricConfirmedCasesRollingAvg = "confirmed_cases_rolling_avg"
	MetricNewCasesRollingAvg       = "new_cases_rolling_avg"
	MetricDeathRate                = "death_rate"
	MetricVaccinationRate          = "vaccination_rate"
	MetricFullVaccinationRate      = "full_vaccination_rate"
)

// MetricNames lista as métricas conhecidas na ordem de cálculo
var MetricNames = []string{
	MetricConfirmedCases,
	MetricDeaths,
	MetricNewCases,
	MetricConfirmedCasesRollingAvg,
	MetricNewCasesRollingAvg,
	MetricDeathRate,
	MetricVaccinationRate,
	MetricFullVaccinationRate,
}

// IsRatioMetric indica métricas que são frações entre 0 e 1
func IsRatioMetric(name string) bool {
	switch name {
	case MetricDeathRate, MetricVaccinationRate, MetricFullVaccinationRate:
		return true
	}
	return false
}

type MetricKey struct {
	Country string `json:"country"`
	Name    string `json:"name"`
}

// Point é um valor de métrica em uma data. Defined=false representa "indefinido"
// (divisão por zero ou janela com dado ausente).
type Point struct {
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
	Defined bool      `json:"defined"`
}

func DefinedPoint(date time.Time, value float64) Point {
	return Point{Date: date, Value: value, Defined: true}
}

func UndefinedPoint(date time.Time) Point {
	return Point{Date: date}
}

type Series []Point

// Latest retorna o último ponto definido da série
func (s Series) Latest() (Point, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Defined {
			return s[i], true
		}
	}
	return Point{}, false
}

// MetricSet mapeia (país, métrica) para uma série ordenada por data
type MetricSet struct {
	Window int
	series map[MetricKey]Series
}

func NewMetricSet(window int) *MetricSet {
	return &MetricSet{
		Window: window,
		series: make(map[MetricKey]Series),
	}
}

// Put registra a série; usado apenas pelo analisador durante a construção
func (m *MetricSet) Put(country, name string, s Series) {
	m.series[MetricKey{Country: country, Name: name}] = s
}

// Series devolve uma cópia da série do país para a métrica
func (m *MetricSet) Series(country, name string) (Series, bool) {
	if m == nil {
		return nil, false
	}
	s, ok := m.series[MetricKey{Country: m.resolveCountry(country), Name: name}]
	if !ok {
		return nil, false
	}
	out := make(Series, len(s))
	copy(out, s)
	return out, true
}

func (m *MetricSet) Latest(country, name string) (Point, bool) {
	s, ok := m.Series(country, name)
	if !ok {
		return Point{}, false
	}
	return s.Latest()
}

func (m *MetricSet) HasMetric(name string) bool {
	if m == nil {
		return false
	}
	for key := range m.series {
		if key.Name == name {
			return true
		}
	}
	return false
}

func (m *MetricSet) HasCountry(country string) bool {
	if m == nil {
		return false
	}
	resolved := m.resolveCountry(country)
	for key := range m.series {
		if key.Country == resolved {
			return true
		}
	}
	return false
}

// Countries retorna os países com ao menos uma série, em ordem alfabética
func (m *MetricSet) Countries() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool)
	for key := range m.series {
		seen[key.Country] = true
	}
	countries := make([]string, 0, len(seen))
	for c := range seen {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries
}

// Keys retorna todas as chaves ordenadas por país e métrica
func (m *MetricSet) Keys() []MetricKey {
	if m == nil {
		return nil
	}
	keys := make([]MetricKey, 0, len(m.series))
	for key := range m.series {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Country != keys[j].Country {
			return keys[i].Country < keys[j].Country
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

func (m *MetricSet) Len() int {
	if m == nil {
		return 0
	}
	return len(m.series)
}

func (m *MetricSet) resolveCountry(country string) string {
	for key := range m.series {
		if strings.EqualFold(key.Country, country) {
			return key.Country
		}
	}
	return country
}
