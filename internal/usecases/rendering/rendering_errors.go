package rendering

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownMetric    = errors.New("unknown metric")
	ErrUnknownCountry   = errors.New("unknown country")
	ErrEmptySelection   = errors.New("nothing to plot")
	ErrUnsupportedChart = errors.New("unsupported chart kind")
	ErrWriteFigure      = errors.New("error writing figure")
)

// RenderError descreve por que um gráfico não pôde ser gerado
type RenderError struct {
	Err     error
	Chart   string
	Metric  string
	Country string
	Details string
}

func (e *RenderError) Error() string {
	parts := []string{e.Err.Error()}
	if e.Chart != "" {
		parts = append(parts, fmt.Sprintf("gráfico %s", e.Chart))
	}
	if e.Metric != "" {
		parts = append(parts, fmt.Sprintf("métrica %s", e.Metric))
	}
	if e.Country != "" {
		parts = append(parts, fmt.Sprintf("país %s", e.Country))
	}
	if e.Details != "" {
		parts = append(parts, e.Details)
	}
	return strings.Join(parts, ": ")
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func newRenderError(err error, req ChartRequest, country, details string) *RenderError {
	return &RenderError{
		Err:     err,
		Chart:   req.FileName,
		Metric:  req.Metric,
		Country: country,
		Details: details,
	}
}
