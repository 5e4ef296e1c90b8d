package main

import (
	"github.com/pkg/errors"

	"github.com/vfg2006/covid-insights/internal/config"
	"github.com/vfg2006/covid-insights/internal/usecases/loading"
	"github.com/vfg2006/covid-insights/internal/usecases/rendering"
	"github.com/vfg2006/covid-insights/pkg/runErrors"
)

// classifyError traduz o erro da execução para o código do diagnóstico
func classifyError(err error) (string, map[string]any) {
	var (
		parseErr  *loading.ParseError
		ioErr     *loading.IOError
		cfgErr    *config.ConfigError
		renderErr *rendering.RenderError
	)

	switch {
	case errors.As(err, &parseErr):
		return runErrors.ErrParse, map[string]any{
			"source": parseErr.Source,
			"line":   parseErr.Line,
			"column": parseErr.Column,
			"value":  parseErr.Value,
		}
	case errors.As(err, &ioErr):
		attempts := make([]map[string]string, 0, len(ioErr.Attempts))
		for _, a := range ioErr.Attempts {
			attempts = append(attempts, map[string]string{
				"source": a.Source,
				"error":  a.Err.Error(),
			})
		}
		return runErrors.ErrIO, map[string]any{"attempts": attempts}
	case errors.As(err, &cfgErr):
		return runErrors.ErrConfig, map[string]any{
			"field": cfgErr.Field,
			"value": cfgErr.Value,
		}
	case errors.As(err, &renderErr):
		return runErrors.ErrRender, map[string]any{
			"chart":   renderErr.Chart,
			"metric":  renderErr.Metric,
			"country": renderErr.Country,
		}
	}

	return runErrors.ErrInternal, nil
}

// diagnose monta o diagnóstico escrito em stderr quando a execução falha
func diagnose(err error) runErrors.RunError {
	code, details := classifyError(err)
	runErr := runErrors.FromError(err, code)
	if len(details) > 0 {
		runErr.Details = details
	}
	return runErr
}
