package rendering

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/vfg2006/covid-insights/internal/domain"
	"github.com/vfg2006/covid-insights/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const plotlyScript = "https://cdn.plot.ly/plotly-2.27.0.min.js"

var choroplethTemplate = template.Must(template.New("choropleth").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
</head>
<body>
<div id="{{.DivID}}" style="width:100%;height:90vh;"></div>
<script>
Plotly.newPlot({{.DivID}}, {{.Data}}, {{.Layout}}, {responsive: true});
</script>
</body>
</html>
`))

type choroplethTrace struct {
	Type          string         `json:"type"`
	LocationMode  string         `json:"locationmode"`
	Locations     []string       `json:"locations"`
	Z             []float64      `json:"z"`
	Text          []string       `json:"text"`
	CustomData    [][3]string    `json:"customdata"`
	ColorScale    string         `json:"colorscale"`
	HoverTemplate string         `json:"hovertemplate"`
	ColorBar      map[string]any `json:"colorbar"`
}

type choroplethPage struct {
	Title  string
	Script string
	DivID  string
	Data   template.JS
	Layout template.JS
}

// buildChoropleth monta a página HTML do mapa. Usa o código ISO-3 quando
// todos os países o possuem; senão, o nome do país.
func buildChoropleth(snapshots []domain.Snapshot, req ChartRequest) ([]byte, error) {
	if !isKnownMetric(req.Metric) {
		return nil, newRenderError(ErrUnknownMetric, req, "", "")
	}

	selected, err := selectSnapshots(snapshots, req)
	if err != nil {
		return nil, err
	}

	useISO := true
	for _, snap := range selected {
		if len(snap.ISOCode) != 3 {
			useISO = false
			break
		}
	}

	trace := choroplethTrace{
		Type:         "choropleth",
		LocationMode: "ISO-3",
		ColorScale:   "RdYlGn",
		ColorBar:     map[string]any{"title": req.YLabel},
	}
	trace.HoverTemplate = "<b>%{text}</b><br>" + req.YLabel + ": %{z:.1f}<br>" +
		"Total cases: %{customdata[0]}<br>Total deaths: %{customdata[1]}<br>" +
		"Population: %{customdata[2]}<extra></extra>"
	if !useISO {
		trace.LocationMode = "country names"
	}

	for _, snap := range selected {
		value, ok := snap.Metric(req.Metric)
		if !ok {
			continue
		}
		if req.Percent {
			value *= 100
		}

		location := snap.Country
		if useISO {
			location = snap.ISOCode
		}

		trace.Locations = append(trace.Locations, location)
		trace.Z = append(trace.Z, utils.RoundWithTwoDecimalPlace(value))
		trace.Text = append(trace.Text, snap.Country)
		trace.CustomData = append(trace.CustomData, [3]string{
			formatCount(snap.Record.ConfirmedCases.Int64, snap.Record.ConfirmedCases.Valid),
			formatCount(snap.Record.Deaths.Int64, snap.Record.Deaths.Valid),
			formatCount(snap.Record.Population.Int64, snap.Record.Population.Valid),
		})
	}

	if len(trace.Z) == 0 {
		return nil, newRenderError(ErrEmptySelection, req, "", "nenhum país com valor definido")
	}

	data, err := json.Marshal([]choroplethTrace{trace})
	if err != nil {
		return nil, err
	}

	layout, err := json.Marshal(map[string]any{
		"title": map[string]any{"text": req.Title},
		"geo": map[string]any{
			"showframe":      false,
			"showcoastlines": true,
			"projection":     map[string]any{"type": "natural earth"},
		},
		"margin": map[string]int{"l": 0, "r": 0, "t": 60, "b": 0},
	})
	if err != nil {
		return nil, err
	}

	id, err := utils.GenerateID()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = choroplethTemplate.Execute(&buf, choroplethPage{
		Title:  req.Title,
		Script: plotlyScript,
		DivID:  "map-" + id,
		Data:   template.JS(data),
		Layout: template.JS(layout),
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao montar o mapa: %w", err)
	}

	return buf.Bytes(), nil
}

func selectSnapshots(snapshots []domain.Snapshot, req ChartRequest) ([]domain.Snapshot, error) {
	if len(req.Countries) == 0 {
		return snapshots, nil
	}

	byCountry := make(map[string]domain.Snapshot, len(snapshots))
	for _, s := range snapshots {
		byCountry[strings.ToLower(s.Country)] = s
	}

	selected := make([]domain.Snapshot, 0, len(req.Countries))
	for _, country := range req.Countries {
		snap, ok := byCountry[strings.ToLower(country)]
		if !ok {
			return nil, newRenderError(ErrUnknownCountry, req, country, "")
		}
		selected = append(selected, snap)
	}
	return selected, nil
}

func formatCount(v int64, valid bool) string {
	if !valid {
		return "n/a"
	}
	return utils.FormatThousands(v)
}
