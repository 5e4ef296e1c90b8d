package loading

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/covid-insights/internal/domain"
)

const owidSample = `iso_code,continent,location,date,total_cases,new_cases,total_deaths,people_vaccinated,people_fully_vaccinated,population
KEN,Africa,Kenya,2021-03-01,105000.0,300.0,1800.0,,,54000000
KEN,Africa,Kenya,2021-03-02,105400.0,400.0,1810.0,1000.0,,54000000
OWID_WRL,,World,2021-03-01,114000000,,2500000,NA,NaN,7800000000
`

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		validate func(t *testing.T, records []domain.Record, err error)
	}{
		{
			name:  "Arquivo OWID - aliases e notação float",
			input: owidSample,
			validate: func(t *testing.T, records []domain.Record, err error) {
				require.NoError(t, err)
				require.Len(t, records, 3)

				kenya := records[0]
				assert.Equal(t, "Kenya", kenya.Country)
				assert.Equal(t, "KEN", kenya.ISOCode)
				assert.Equal(t, "Africa", kenya.Continent)
				assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), kenya.Date)
				assert.Equal(t, domain.Count(105000), kenya.ConfirmedCases)
				assert.Equal(t, domain.Count(300), kenya.NewCases)
				assert.Equal(t, domain.Count(1800), kenya.Deaths)
				assert.False(t, kenya.Vaccinated.Valid)
				assert.Equal(t, domain.Count(54000000), kenya.Population)

				assert.Equal(t, domain.Count(1000), records[1].Vaccinated)

				world := records[2]
				assert.True(t, world.IsAggregate())
				assert.False(t, world.Vaccinated.Valid)
				assert.False(t, world.FullyVaccinated.Valid)
				assert.Equal(t, "", world.Continent)
			},
		},
		{
			name:  "Cabeçalho canônico com espaços e maiúsculas",
			input: "Country, Date ,Confirmed Cases,Deaths,Vaccinated\nTestland,2021-01-01,100,1,0\n",
			validate: func(t *testing.T, records []domain.Record, err error) {
				require.NoError(t, err)
				require.Len(t, records, 1)
				assert.Equal(t, "Testland", records[0].Country)
				assert.Equal(t, domain.Count(100), records[0].ConfirmedCases)
			},
		},
		{
			name:  "Somente cabeçalho - conjunto vazio",
			input: "country,date,confirmed_cases,deaths,vaccinated\n",
			validate: func(t *testing.T, records []domain.Record, err error) {
				require.NoError(t, err)
				assert.Empty(t, records)
			},
		},
		{
			name:  "Coluna obrigatória ausente",
			input: "country,date,confirmed_cases\nA,2021-01-01,1\n",
			validate: func(t *testing.T, records []domain.Record, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, 1, parseErr.Line)
				assert.Contains(t, parseErr.Column, "deaths")
				assert.Contains(t, parseErr.Column, "vaccinated")
			},
		},
		{
			name:  "Contagem negativa",
			input: "country,date,confirmed_cases,deaths,vaccinated\nA,2021-01-01,10,1,0\nA,2021-01-02,-5,1,0\n",
			validate: func(t *testing.T, records []domain.Record, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, 3, parseErr.Line)
				assert.Equal(t, "confirmed_cases", parseErr.Column)
				assert.Equal(t, "-5", parseErr.Value)
				assert.ErrorIs(t, err, ErrMalformedInput)
			},
		},
		{
			name:  "Número inválido",
			input: "country,date,confirmed_cases,deaths,vaccinated\nA,2021-01-01,dez,1,0\n",
			validate: func(t *testing.T, records []domain.Record, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, 2, parseErr.Line)
				assert.Equal(t, "dez", parseErr.Value)
			},
		},
		{
			name:  "Contagem acima do limite de int64",
			input: "country,date,confirmed_cases,deaths,vaccinated\nTestland,2021-01-01,1e30,0,0\n",
			validate: func(t *testing.T, records []domain.Record, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, 2, parseErr.Line)
				assert.Equal(t, "confirmed_cases", parseErr.Column)
				assert.Equal(t, "1e30", parseErr.Value)
				assert.Empty(t, records)
			},
		},
		{
			name:  "Data inválida",
			input: "country,date,confirmed_cases,deaths,vaccinated\nA,ontem,1,1,0\n",
			validate: func(t *testing.T, records []domain.Record, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, "date", parseErr.Column)
			},
		},
		{
			name:  "País vazio",
			input: "country,date,confirmed_cases,deaths,vaccinated\n,2021-01-01,1,1,0\n",
			validate: func(t *testing.T, records []domain.Record, err error) {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, "country", parseErr.Column)
			},
		},
		{
			name:  "Arquivo vazio",
			input: "   \n",
			validate: func(t *testing.T, records []domain.Record, err error) {
				assert.ErrorIs(t, err, ErrMalformedInput)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := parseCSV([]byte(tt.input), ',')
			tt.validate(t, records, err)
		})
	}
}

func TestParseCSV_RowCountMatchesDataLines(t *testing.T) {
	var b strings.Builder
	b.WriteString("country,date,confirmed_cases,deaths,vaccinated\n")
	lines := 0
	for _, country := range []string{"A", "B", "C"} {
		for day := 1; day <= 20; day++ {
			fmt.Fprintf(&b, "%s,2021-01-%02d,10,1,\n", country, day)
			lines++
		}
	}

	records, err := parseCSV([]byte(b.String()), ',')
	require.NoError(t, err)
	assert.Len(t, records, lines)
}

func TestParseCSV_Delimiter(t *testing.T) {
	records, err := parseCSV([]byte("country;date;confirmed_cases;deaths;vaccinated\nA;2021-01-01;1;0;0\n"), ';')
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw      string
		expected int64
		valid    bool
		wantErr  bool
	}{
		{raw: "42", expected: 42, valid: true},
		{raw: "1234.0", expected: 1234, valid: true},
		{raw: "7.6", expected: 8, valid: true},
		{raw: "", valid: false},
		{raw: "NA", valid: false},
		{raw: "NaN", valid: false},
		{raw: "-1", wantErr: true},
		{raw: "-0.5", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "1e30", wantErr: true},
		{raw: "9223372036854775808.0", wantErr: true},
		{raw: "1e18", expected: 1_000_000_000_000_000_000, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseCount(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.expected, got.Int64)
		})
	}
}
