package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricSet(t *testing.T) {
	ms := NewMetricSet(7)
	ms.Put("Kenya", MetricConfirmedCases, Series{
		DefinedPoint(day(1), 10),
		DefinedPoint(day(2), 20),
		UndefinedPoint(day(3)),
	})
	ms.Put("Brazil", MetricDeathRate, Series{UndefinedPoint(day(1))})

	assert.Equal(t, 2, ms.Len())
	assert.True(t, ms.HasMetric(MetricDeathRate))
	assert.False(t, ms.HasMetric(MetricVaccinationRate))
	assert.True(t, ms.HasCountry("kenya"))
	assert.Equal(t, []string{"Brazil", "Kenya"}, ms.Countries())
	assert.Equal(t, []MetricKey{
		{Country: "Brazil", Name: MetricDeathRate},
		{Country: "Kenya", Name: MetricConfirmedCases},
	}, ms.Keys())

	latest, ok := ms.Latest("KENYA", MetricConfirmedCases)
	require.True(t, ok)
	assert.Equal(t, 20.0, latest.Value)

	_, ok = ms.Latest("Brazil", MetricDeathRate)
	assert.False(t, ok, "série sem ponto definido")

	series, ok := ms.Series("Kenya", MetricConfirmedCases)
	require.True(t, ok)
	series[0].Value = 999
	again, _ := ms.Series("Kenya", MetricConfirmedCases)
	assert.Equal(t, 10.0, again[0].Value, "Series devolve cópia")

	_, ok = ms.Series("Peru", MetricConfirmedCases)
	assert.False(t, ok)
}

func TestIsRatioMetric(t *testing.T) {
	assert.True(t, IsRatioMetric(MetricDeathRate))
	assert.True(t, IsRatioMetric(MetricFullVaccinationRate))
	assert.False(t, IsRatioMetric(MetricNewCasesRollingAvg))
}

func TestSnapshot_Metric(t *testing.T) {
	s := Snapshot{Metrics: map[string]float64{MetricDeathRate: 0.02}}
	v, ok := s.Metric(MetricDeathRate)
	assert.True(t, ok)
	assert.Equal(t, 0.02, v)

	_, ok = s.Metric(MetricVaccinationRate)
	assert.False(t, ok)
}
