package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Erros base da taxonomia do otimizador. Use errors.Is para classificar.
var (
	// ErrAuth indica que o refresh token foi rejeitado ou o token de acesso é inválido. Fatal.
	ErrAuth = errors.New("falha de autenticação na API de anúncios")

	// ErrConfig indica configuração ilegível ou inválida. Fatal.
	ErrConfig = errors.New("configuração inválida")

	// ErrRateLimitExceeded é retornado quando as tentativas se esgotam após respostas 429.
	ErrRateLimitExceeded = errors.New("limite de requisições excedido")

	// ErrRateLimitWouldBlock é retornado quando a espera por tokens excede o máximo configurado.
	ErrRateLimitWouldBlock = errors.New("limitador bloquearia além da espera máxima")

	// ErrTransientAPI é retornado quando as tentativas se esgotam após erros 5xx ou de rede.
	ErrTransientAPI = errors.New("erro transitório na API de anúncios")

	// ErrValidation indica que uma ação proposta viola uma invariante local.
	ErrValidation = errors.New("erro de validação")

	// ErrPartialBatchFailure indica que apenas parte de um lote foi aplicada.
	ErrPartialBatchFailure = errors.New("falha parcial no lote")

	// ErrBatchTooLarge indica que a API rejeitou o lote pelo tamanho.
	ErrBatchTooLarge = errors.New("lote maior que o aceito pela API")

	// ErrRunInProgress indica que já existe uma execução para o mesmo perfil.
	ErrRunInProgress = errors.New("execução já em andamento")
)

// APIError carrega o status HTTP e o corpo de uma resposta de erro da API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s status=%d body=%s", e.Err.Error(), e.Endpoint, e.StatusCode, body)
	}
	return fmt.Sprintf("erro na API: %s status=%d body=%s", e.Endpoint, e.StatusCode, body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ValidationError descreve qual campo violou qual regra.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PartialBatchFailure lista os itens que falharam em um lote parcialmente aplicado.
type PartialBatchFailure struct {
	Operation OperationType
	Total     int
	Failed    map[string]error
}

func (e *PartialBatchFailure) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	return fmt.Sprintf("%s: %s %d/%d itens falharam (%s)",
		ErrPartialBatchFailure.Error(), e.Operation, len(e.Failed), e.Total, strings.Join(ids, ","))
}

func (e *PartialBatchFailure) Unwrap() error {
	return ErrPartialBatchFailure
}

// IsFatal informa se o erro deve abortar a execução imediatamente.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrConfig)
}

// IsRetryable informa se a falha pode ser tentada novamente na próxima execução.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded) ||
		errors.Is(err, ErrTransientAPI) ||
		errors.Is(err, ErrRateLimitWouldBlock)
}
