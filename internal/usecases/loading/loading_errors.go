package loading

import (
	"errors"
	"fmt"
	"strings"
)

// Erros específicos do carregamento
var (
	// Nenhuma fonte pôde ser lida
	ErrSourceUnavailable = errors.New("input source unavailable")
	// A fonte foi lida mas não corresponde ao esquema esperado
	ErrMalformedInput = errors.New("malformed input")
)

// Attempt registra uma tentativa de leitura de fonte que falhou
type Attempt struct {
	Source string
	Err    error
}

// IOError indica que todas as fontes falharam
type IOError struct {
	Err      error
	Attempts []Attempt
}

func (e *IOError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s: nenhuma fonte configurada", e.Err.Error())
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s (%v)", a.Source, a.Err))
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), strings.Join(parts, "; "))
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError aponta a linha e a coluna do valor inválido.
// Line é a linha física do arquivo (o cabeçalho é a linha 1); 0 quando desconhecida.
type ParseError struct {
	Err     error
	Source  string
	Line    int
	Column  string
	Value   string
	Details string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Source != "" {
		fmt.Fprintf(&b, ": %s", e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ": linha %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": coluna %s", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, ": valor %q", e.Value)
	}
	if e.Details != "" {
		fmt.Fprintf(&b, ": %s", e.Details)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(line int, column, value, details string) *ParseError {
	return &ParseError{
		Err:     ErrMalformedInput,
		Line:    line,
		Column:  column,
		Value:   value,
		Details: details,
	}
}
