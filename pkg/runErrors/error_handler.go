package runErrors

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Códigos de erro de uma execução
const (
	ErrIO       = "IO_001"     // Falha de acesso ao arquivo ou à fonte remota
	ErrParse    = "PARSE_001"  // Esquema ou conteúdo do arquivo inválido
	ErrConfig   = "CFG_001"    // Opção de configuração inválida
	ErrRender   = "RENDER_001" // Pedido de visualização inválido
	ErrInternal = "RUN_001"    // Qualquer outra falha
)

// Mapeamento de códigos de erro para código de saída do processo
var exitStatusMap = map[string]int{
	ErrIO:       3,
	ErrParse:    4,
	ErrConfig:   2,
	ErrRender:   5,
	ErrInternal: 1,
}

// RunError representa o diagnóstico padronizado de uma execução que falhou
type RunError struct {
	Code    string `json:"code"`              // Código de erro
	Message string `json:"message,omitempty"` // Mensagem descritiva
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// ExitStatus retorna o código de saída associado ao código de erro
func ExitStatus(code string) int {
	status, exists := exitStatusMap[code]
	if !exists {
		return exitStatusMap[ErrInternal]
	}
	return status
}

// Write escreve o diagnóstico em JSON (uma linha) e devolve o código de saída
func (e RunError) Write(w io.Writer) int {
	_ = json.NewEncoder(w).Encode(e)
	return ExitStatus(e.Code)
}

// FromError cria um RunError a partir de um erro Go
func FromError(err error, code string) RunError {
	if err == nil {
		return RunError{
			Code:    ErrInternal,
			Message: "Erro desconhecido",
		}
	}

	return RunError{
		Code:    code,
		Message: err.Error(),
	}
}
