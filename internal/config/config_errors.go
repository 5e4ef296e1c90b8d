package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig é o erro base para qualquer opção de configuração inválida
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError descreve uma opção de configuração com valor inválido
type ConfigError struct {
	Err     error
	Field   string
	Value   string
	Details string
}

func (e *ConfigError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s=%q: %s", e.Err.Error(), e.Field, e.Value, e.Details)
	}
	return fmt.Sprintf("%s: %s=%q", e.Err.Error(), e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError cria um ConfigError para o campo informado
func NewConfigError(field, value, details string) *ConfigError {
	return &ConfigError{
		Err:     ErrInvalidConfig,
		Field:   field,
		Value:   value,
		Details: details,
	}
}
