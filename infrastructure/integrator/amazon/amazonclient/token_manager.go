package amazonclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/pkg/ratelimit"
)

// TokenManager gerencia o token de acesso da API de anúncios
type TokenManager struct {
	cfg        config.Amazon
	httpClient *http.Client
	limiter    ratelimit.Limiter
	now        func() time.Time

	tokenRefreshMutex sync.Mutex
	accessToken       string
	expiresAt         time.Time
	refreshedAt       time.Time

	stopRefresh chan struct{}
	stopOnce    sync.Once
}

// TokenStatus resume o estado do token sem expô-lo.
type TokenStatus struct {
	HasToken    bool      `json:"has_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// NewTokenManager cria uma nova instância do gerenciador de tokens
func NewTokenManager(cfg config.Amazon, httpClient *http.Client, limiter ratelimit.Limiter) *TokenManager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &TokenManager{
		cfg:         cfg,
		httpClient:  httpClient,
		limiter:     limiter,
		now:         time.Now,
		stopRefresh: make(chan struct{}),
	}
}

// AccessToken retorna um token válido, renovando-o se necessário.
func (tm *TokenManager) AccessToken(ctx context.Context) (string, error) {
	tm.tokenRefreshMutex.Lock()
	defer tm.tokenRefreshMutex.Unlock()

	if tm.accessToken != "" && tm.now().Before(tm.expiresAt) {
		return tm.accessToken, nil
	}

	if err := tm.refreshLocked(ctx); err != nil {
		return "", err
	}
	return tm.accessToken, nil
}

// RefreshToken força a troca do refresh token por um novo token de acesso.
func (tm *TokenManager) RefreshToken(ctx context.Context) error {
	tm.tokenRefreshMutex.Lock()
	defer tm.tokenRefreshMutex.Unlock()

	return tm.refreshLocked(ctx)
}

// Invalidate descarta o token se ele ainda for o informado. Chamadas concorrentes
// que receberam 401 com o mesmo token provocam uma única renovação.
func (tm *TokenManager) Invalidate(token string) {
	tm.tokenRefreshMutex.Lock()
	defer tm.tokenRefreshMutex.Unlock()

	if tm.accessToken == token {
		tm.accessToken = ""
		tm.expiresAt = time.Time{}
	}
}

func (tm *TokenManager) Status() TokenStatus {
	tm.tokenRefreshMutex.Lock()
	defer tm.tokenRefreshMutex.Unlock()

	return TokenStatus{
		HasToken:    tm.accessToken != "" && tm.now().Before(tm.expiresAt),
		ExpiresAt:   tm.expiresAt,
		RefreshedAt: tm.refreshedAt,
	}
}

func (tm *TokenManager) refreshLocked(ctx context.Context) error {
	if tm.limiter != nil {
		if err := tm.limiter.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("aguardando limitador para renovar token: %w", err)
		}
	}

	logrus.Debug("amazon: renovando token de acesso")
	tokenResponse, err := RequestAccessToken(
		ctx,
		tm.httpClient,
		tm.cfg.TokenURL,
		tm.cfg.ClientID,
		tm.cfg.ClientSecret,
		tm.cfg.RefreshToken,
		tm.cfg.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("erro ao renovar token de acesso: %w", err)
	}

	now := tm.now()
	tm.accessToken = tokenResponse.AccessToken
	tm.expiresAt = CalculateTokenExpiration(now, tokenResponse.ExpiresIn)
	tm.refreshedAt = now

	logrus.WithField("expires_at", tm.expiresAt.Format(time.RFC3339)).Info("amazon: token de acesso renovado")
	return nil
}

// StartAutoRefresh renova o token periodicamente até StopAutoRefresh ou o fim do contexto.
func (tm *TokenManager) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	if err := tm.RefreshToken(ctx); err != nil {
		logrus.WithError(err).Error("amazon: erro ao iniciar o token")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := tm.RefreshToken(ctx); err != nil {
				logrus.WithError(err).Error("amazon: erro na renovação periódica do token")

				// Se falhar, tente novamente em um intervalo mais curto
				ticker.Reset(time.Minute)
			} else {
				ticker.Reset(interval)
			}
		case <-tm.stopRefresh:
			logrus.Info("amazon: encerrando renovação periódica do token")
			return
		case <-ctx.Done():
			return
		}
	}
}

// StopAutoRefresh para a goroutine de renovação automática
func (tm *TokenManager) StopAutoRefresh() {
	tm.stopOnce.Do(func() {
		close(tm.stopRefresh)
	})
}
