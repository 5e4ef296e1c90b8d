package domain

const (
	FigureKindLine       = "line"
	FigureKindBar        = "bar"
	FigureKindChoropleth = "choropleth"
	FigureKindReport     = "report"
	FigureKindExport     = "export"
)

// Figure é um artefato gerado pela execução (gráfico, mapa, relatório ou exportação)
type Figure struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Bytes       int64  `json:"bytes"`
}
