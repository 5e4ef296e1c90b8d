package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDataset_Ordering(t *testing.T) {
	input := []Record{
		{Country: "Kenya", Date: day(2), ConfirmedCases: Count(2)},
		{Country: "Brazil", Date: day(1), ConfirmedCases: Count(10)},
		{Country: "Kenya", Date: day(1), ConfirmedCases: Count(1)},
		{Country: "Kenya", Date: day(1), ConfirmedCases: Count(99)},
	}

	ds := NewDataset(input)
	require.Equal(t, 4, ds.Len())

	records := ds.Records()
	assert.Equal(t, "Brazil", records[0].Country)
	assert.Equal(t, Count(1), records[1].ConfirmedCases, "ordem do arquivo mantida entre chaves iguais")
	assert.Equal(t, Count(99), records[2].ConfirmedCases)
	assert.Equal(t, day(2), records[3].Date)

	assert.Equal(t, []string{"Brazil", "Kenya"}, ds.Countries())
	assert.Equal(t, "Kenya", input[0].Country, "entrada não é alterada")
}

func TestDataset_Accessors(t *testing.T) {
	ds := NewDataset([]Record{
		{Country: "Kenya", Date: day(3)},
		{Country: "Kenya", Date: day(1)},
		{Country: "India", Date: day(5)},
	})

	assert.True(t, ds.HasCountry("KENYA"))
	assert.False(t, ds.HasCountry("Peru"))

	series := ds.Series("kenya")
	require.Len(t, series, 2)
	assert.Equal(t, day(1), series[0].Date)

	series[0].Country = "alterado"
	assert.Equal(t, "Kenya", ds.Series("Kenya")[0].Country, "acessores devolvem cópias")

	first, last := ds.DateRange()
	assert.Equal(t, day(1), first)
	assert.Equal(t, day(5), last)

	assert.Nil(t, ds.Series("Peru"))

	var empty *Dataset
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Countries())
}

func TestRecord_Helpers(t *testing.T) {
	r := Record{Country: "Kenya", Date: day(1), ConfirmedCases: Count(10), Deaths: Count(1)}
	assert.False(t, r.HasRequiredFields())

	r = r.WithCount(FieldVaccinated, Count(0))
	assert.True(t, r.HasRequiredFields())
	assert.Equal(t, Count(0), r.Count(FieldVaccinated))

	assert.True(t, Record{ISOCode: "OWID_AFR"}.IsAggregate())
	assert.False(t, Record{ISOCode: "KEN"}.IsAggregate())
}
