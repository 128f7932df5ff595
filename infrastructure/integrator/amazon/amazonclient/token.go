package amazonclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

// TokenResponse representa a resposta do Login with Amazon ao trocar o refresh token
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RequestAccessToken troca o refresh token por um token de acesso.
// Credenciais rejeitadas retornam um erro que satisfaz errors.Is(err, domain.ErrAuth).
func RequestAccessToken(ctx context.Context, httpClient *http.Client, tokenURL, clientID, clientSecret, refreshToken, userAgent string) (*TokenResponse, error) {
	if refreshToken == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client id, client secret e refresh token são obrigatórios", domain.ErrAuth)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar requisição de token: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao obter token de acesso: %v", domain.ErrTransientAPI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logrus.WithField("status", resp.StatusCode).Error("amazon: falha ao obter token de acesso")
		return nil, classifyTokenError(resp.StatusCode, body)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token retornado pela API é vazio", domain.ErrAuth)
	}

	logrus.Debugf("amazon: token de acesso obtido, expira em %s", FormatDuration(tokenResp.ExpiresIn))

	return &tokenResp, nil
}

func classifyTokenError(status int, body []byte) error {
	apiErr := &domain.APIError{StatusCode: status, Endpoint: "oauth2/token", Body: string(body)}

	var tokenErr amazondomain.TokenErrorResponse
	if err := json.Unmarshal(body, &tokenErr); err == nil && tokenErr.IsInvalidGrant() {
		apiErr.Err = domain.ErrAuth
		return apiErr
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden:
		apiErr.Err = domain.ErrAuth
	case status == http.StatusTooManyRequests:
		apiErr.Err = domain.ErrRateLimitExceeded
	default:
		apiErr.Err = domain.ErrTransientAPI
	}
	return apiErr
}

// FormatDuration formata a duração em segundos para um formato legível
func FormatDuration(seconds int64) string {
	duration := time.Duration(seconds) * time.Second
	hours := duration / time.Hour
	minutes := (duration % time.Hour) / time.Minute

	return fmt.Sprintf("%d horas e %d minutos", hours, minutes)
}

// CalculateTokenExpiration antecipa a expiração em 5 minutos para renovar antes do prazo real.
func CalculateTokenExpiration(now time.Time, expiresIn int64) time.Time {
	buffer := int64(5 * 60)
	safeExpiresIn := expiresIn - buffer

	if safeExpiresIn <= 0 {
		safeExpiresIn = expiresIn / 2 // Se for muito curto, usamos metade do tempo
	}

	return now.Add(time.Duration(safeExpiresIn) * time.Second)
}
