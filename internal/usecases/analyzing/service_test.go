package analyzing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/covid-insights/internal/config"
	"github.com/vfg2006/covid-insights/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewService_InvalidWindow(t *testing.T) {
	_, err := NewService(0)
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ROLLING_WINDOW", cfgErr.Field)

	service, err := NewService(DefaultWindow)
	require.NoError(t, err)
	assert.Equal(t, 7, service.Window())
}

func TestAnalyze_TestlandRollingMean(t *testing.T) {
	ds := domain.NewDataset([]domain.Record{
		{Country: "Testland", Date: day(1), ConfirmedCases: domain.Count(100), Deaths: domain.Count(1), Vaccinated: domain.Count(0)},
		{Country: "Testland", Date: day(2), ConfirmedCases: domain.Count(200), Deaths: domain.Count(2), Vaccinated: domain.Count(0)},
		{Country: "Testland", Date: day(3), ConfirmedCases: domain.Count(300), Deaths: domain.Count(3), Vaccinated: domain.Count(0)},
	})

	service, err := NewService(3)
	require.NoError(t, err)

	ms, err := service.Analyze(context.Background(), ds)
	require.NoError(t, err)

	rolling, ok := ms.Series("Testland", domain.MetricConfirmedCasesRollingAvg)
	require.True(t, ok)
	require.Len(t, rolling, 1)
	assert.True(t, rolling[0].Defined)
	assert.Equal(t, 200.0, rolling[0].Value)
	assert.Equal(t, day(3), rolling[0].Date)

	newCases, ok := ms.Series("Testland", domain.MetricNewCases)
	require.True(t, ok)
	require.Len(t, newCases, 3)
	assert.False(t, newCases[0].Defined)
	assert.Equal(t, 100.0, newCases[1].Value)
	assert.Equal(t, 100.0, newCases[2].Value)

	// new_cases tem o primeiro dia indefinido, então a única janela também é
	newRolling, _ := ms.Series("Testland", domain.MetricNewCasesRollingAvg)
	require.Len(t, newRolling, 1)
	assert.False(t, newRolling[0].Defined)
}

func TestRollingMean(t *testing.T) {
	points := func(values ...float64) domain.Series {
		s := make(domain.Series, len(values))
		for i, v := range values {
			s[i] = domain.DefinedPoint(day(i+1), v)
		}
		return s
	}

	tests := []struct {
		name     string
		series   domain.Series
		window   int
		validate func(t *testing.T, out domain.Series)
	}{
		{
			name:   "Janela 1 - identidade",
			series: points(1, 2, 3),
			window: 1,
			validate: func(t *testing.T, out domain.Series) {
				require.Len(t, out, 3)
				assert.Equal(t, 3.0, out[2].Value)
			},
		},
		{
			name:   "Série menor que a janela - vazia",
			series: points(1, 2),
			window: 7,
			validate: func(t *testing.T, out domain.Series) {
				assert.Empty(t, out)
			},
		},
		{
			name: "Ponto indefinido contamina as janelas que o contêm",
			series: domain.Series{
				domain.DefinedPoint(day(1), 1),
				domain.UndefinedPoint(day(2)),
				domain.DefinedPoint(day(3), 3),
				domain.DefinedPoint(day(4), 4),
			},
			window: 2,
			validate: func(t *testing.T, out domain.Series) {
				require.Len(t, out, 3)
				assert.False(t, out[0].Defined)
				assert.False(t, out[1].Defined)
				assert.True(t, out[2].Defined)
				assert.Equal(t, 3.5, out[2].Value)
				assert.Equal(t, day(4), out[2].Date)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, RollingMean(tt.series, tt.window))
		})
	}
}

func TestAnalyze_RollingLengthPerCountry(t *testing.T) {
	records := make([]domain.Record, 0)
	lengths := map[string]int{"A": 10, "B": 3, "C": 1}
	for country, n := range lengths {
		for d := 1; d <= n; d++ {
			records = append(records, domain.Record{
				Country:        country,
				Date:           day(d),
				ConfirmedCases: domain.Count(int64(d * 10)),
				Deaths:         domain.Count(1),
				Vaccinated:     domain.Count(0),
			})
		}
	}

	for _, window := range []int{1, 3, 7} {
		service, err := NewService(window)
		require.NoError(t, err)
		ms, err := service.Analyze(context.Background(), domain.NewDataset(records))
		require.NoError(t, err)

		for country, n := range lengths {
			rolling, ok := ms.Series(country, domain.MetricConfirmedCasesRollingAvg)
			require.True(t, ok)
			expected := n - (window - 1)
			if expected < 0 {
				expected = 0
			}
			assert.Len(t, rolling, expected, "país %s, janela %d", country, window)
		}
	}
}

func TestAnalyze_Ratios(t *testing.T) {
	ds := domain.NewDataset([]domain.Record{
		{Country: "Zeroland", Date: day(1), ConfirmedCases: domain.Count(0), Deaths: domain.Count(0), Vaccinated: domain.Count(0), Population: domain.Count(0)},
		{Country: "Oddland", Date: day(1), ConfirmedCases: domain.Count(10), Deaths: domain.Count(20), Vaccinated: domain.Count(5), FullyVaccinated: domain.Count(2), Population: domain.Count(100)},
		{Country: "Normaland", Date: day(1), ConfirmedCases: domain.Count(200), Deaths: domain.Count(5), Vaccinated: domain.Count(50), Population: domain.Count(100)},
	})

	service, _ := NewService(DefaultWindow)
	ms, err := service.Analyze(context.Background(), ds)
	require.NoError(t, err)

	_, ok := ms.Latest("Zeroland", domain.MetricDeathRate)
	assert.False(t, ok, "casos zero deixam a taxa de letalidade indefinida")
	_, ok = ms.Latest("Zeroland", domain.MetricVaccinationRate)
	assert.False(t, ok, "população zero deixa a vacinação indefinida")

	_, ok = ms.Latest("Oddland", domain.MetricDeathRate)
	assert.False(t, ok, "óbitos acima dos casos deixam a taxa indefinida")
	full, ok := ms.Latest("Oddland", domain.MetricFullVaccinationRate)
	require.True(t, ok)
	assert.InDelta(t, 0.02, full.Value, 1e-9)

	rate, ok := ms.Latest("Normaland", domain.MetricDeathRate)
	require.True(t, ok)
	assert.InDelta(t, 0.025, rate.Value, 1e-9)
	_, ok = ms.Latest("Normaland", domain.MetricFullVaccinationRate)
	assert.False(t, ok)

	for _, country := range ms.Countries() {
		series, _ := ms.Series(country, domain.MetricDeathRate)
		for _, p := range series {
			if p.Defined {
				assert.GreaterOrEqual(t, p.Value, 0.0)
				assert.LessOrEqual(t, p.Value, 1.0)
			}
		}
	}
}

func TestSnapshotsAndRank(t *testing.T) {
	ds := domain.NewDataset([]domain.Record{
		{Country: "Brazil", ISOCode: "BRA", Date: day(1), ConfirmedCases: domain.Count(100), Deaths: domain.Count(3), Vaccinated: domain.Count(10), Population: domain.Count(100)},
		{Country: "Brazil", ISOCode: "BRA", Date: day(2), ConfirmedCases: domain.Count(150), Deaths: domain.Count(3), Vaccinated: domain.Count(20), Population: domain.Count(100)},
		{Country: "Kenya", ISOCode: "KEN", Date: day(2), ConfirmedCases: domain.Count(150), Deaths: domain.Count(3), Vaccinated: domain.Count(5), Population: domain.Count(100)},
		{Country: "India", ISOCode: "IND", Date: day(2), ConfirmedCases: domain.Count(400), Deaths: domain.Count(8), Vaccinated: domain.Count(0)},
	})

	service, _ := NewService(DefaultWindow)
	ms, err := service.Analyze(context.Background(), ds)
	require.NoError(t, err)

	snapshots := service.Snapshots(ds, ms)
	require.Len(t, snapshots, 3)
	assert.Equal(t, "Brazil", snapshots[0].Country)
	assert.Equal(t, day(2), snapshots[0].Date)
	assert.Equal(t, "BRA", snapshots[0].ISOCode)
	cases, ok := snapshots[0].Metric(domain.MetricConfirmedCases)
	require.True(t, ok)
	assert.Equal(t, 150.0, cases)

	tests := []struct {
		name     string
		metric   string
		previous []domain.Ranking
		validate func(t *testing.T, rankings []domain.Ranking, err error)
	}{
		{
			name:   "Empate desfeito em ordem alfabética",
			metric: domain.MetricConfirmedCases,
			validate: func(t *testing.T, rankings []domain.Ranking, err error) {
				require.NoError(t, err)
				require.Len(t, rankings, 3)
				assert.Equal(t, "India", rankings[0].Country)
				assert.Equal(t, "Brazil", rankings[1].Country)
				assert.Equal(t, "Kenya", rankings[2].Country)
				assert.Equal(t, 3, rankings[2].Position)
			},
		},
		{
			name:   "Indefinidos ficam de fora",
			metric: domain.MetricVaccinationRate,
			validate: func(t *testing.T, rankings []domain.Ranking, err error) {
				require.NoError(t, err)
				require.Len(t, rankings, 2)
				assert.Equal(t, "Brazil", rankings[0].Country)
				assert.InDelta(t, 0.2, rankings[0].Value, 1e-9)
			},
		},
		{
			name:   "Variação de posição em relação ao ranking anterior",
			metric: domain.MetricConfirmedCases,
			previous: []domain.Ranking{
				{Country: "Kenya", Metric: domain.MetricConfirmedCases, Position: 1},
				{Country: "India", Metric: domain.MetricConfirmedCases, Position: 2},
			},
			validate: func(t *testing.T, rankings []domain.Ranking, err error) {
				require.NoError(t, err)
				assert.Equal(t, 1, rankings[0].PositionChange)
				assert.Equal(t, 2, rankings[0].PreviousPosition)
				assert.Equal(t, 0, rankings[1].PositionChange)
				assert.Equal(t, 0, rankings[1].PreviousPosition)
				assert.Equal(t, -2, rankings[2].PositionChange)
			},
		},
		{
			name:   "Métrica desconhecida",
			metric: "r0",
			validate: func(t *testing.T, rankings []domain.Ranking, err error) {
				assert.ErrorIs(t, err, ErrUnknownMetric)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rankings, err := service.Rank(snapshots, tt.metric, tt.previous)
			tt.validate(t, rankings, err)
		})
	}
}
