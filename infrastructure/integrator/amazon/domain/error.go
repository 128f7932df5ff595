package amazondomain

import "strings"

// ErrorResponse representa o corpo de erro da API de anúncios.
type ErrorResponse struct {
	Code      string `json:"code"`
	Details   string `json:"details"`
	RequestID string `json:"requestId,omitempty"`
	Message   string `json:"message,omitempty"`
}

// IsBatchTooLarge identifica rejeições pelo número de itens no corpo.
func (e *ErrorResponse) IsBatchTooLarge() bool {
	text := strings.ToLower(e.Code + " " + e.Details + " " + e.Message)
	return strings.Contains(text, "too many") || strings.Contains(text, "too large")
}

// TokenErrorResponse é o corpo de erro do endpoint OAuth (LWA).
type TokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// IsInvalidGrant indica refresh token revogado, expirado ou de outro cliente.
func (e *TokenErrorResponse) IsInvalidGrant() bool {
	return e.Error == "invalid_grant" || e.Error == "invalid_client" || e.Error == "unauthorized_client"
}
