package amazonclient

//go:generate mockgen -source=client.go -destination=../mocks/client_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ppc-optimizer/infrastructure/cache"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/pkg/ratelimit"
	"github.com/vfg2006/ppc-optimizer/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errDuplicateReport = errors.New("pedido de relatório duplicado")

type Client interface {
	GetProfiles(ctx context.Context) ([]amazondomain.Profile, error)
	ListCampaigns(ctx context.Context, profileID string) ([]amazondomain.Campaign, error)
	ListAdGroups(ctx context.Context, profileID string) ([]amazondomain.AdGroup, error)
	ListKeywords(ctx context.Context, profileID string) ([]amazondomain.Keyword, error)
	ListNegativeKeywords(ctx context.Context, profileID string) ([]amazondomain.Keyword, error)
	GetKeywordSuggestions(ctx context.Context, profileID, adGroupID string, max int) ([]amazondomain.SuggestedKeyword, error)
	FetchReport(ctx context.Context, profileID string, reportType amazondomain.ReportType, startDate, endDate string) ([]amazondomain.ReportRow, error)
	UpdateKeywordBids(ctx context.Context, profileID string, updates []amazondomain.KeywordBidUpdate) ([]amazondomain.MutationResult, error)
	UpdateCampaignStates(ctx context.Context, profileID string, updates []amazondomain.CampaignStateUpdate) ([]amazondomain.MutationResult, error)
	CreateKeywords(ctx context.Context, profileID string, keywords []amazondomain.KeywordCreate) ([]amazondomain.MutationResult, error)
	CreateNegativeKeywords(ctx context.Context, profileID string, keywords []amazondomain.KeywordCreate) ([]amazondomain.MutationResult, error)
	CheckOAuth(ctx context.Context) (*OAuthCheck, error)
}

// Observer recebe eventos de cada chamada. Implementado pelas métricas Prometheus.
type Observer interface {
	ObserveRequest(method, endpoint string, status int, duration time.Duration)
	ObserveRetry(endpoint, reason string)
	ObserveCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, string, int, time.Duration) {}
func (nopObserver) ObserveRetry(string, string)                       {}
func (nopObserver) ObserveCache(bool)                                 {}

// Dependencies agrupa o estado compartilhado pelo processo. Limiter é obrigatório.
type Dependencies struct {
	HTTPClient *http.Client
	Limiter    ratelimit.Limiter
	Budget     *ratelimit.RateBudget
	Cache      cache.ResponseCache
	Retry      RetryPolicy
	Observer   Observer
}

type AmazonClient struct {
	cfg          config.Amazon
	tokenManager *TokenManager
	httpClient   *http.Client
	limiter      ratelimit.Limiter
	budget       *ratelimit.RateBudget
	cache        cache.ResponseCache
	cacheTTL     time.Duration
	retry        RetryPolicy
	observer     Observer
	pageSize     int
	pollInterval time.Duration
	pollTimeout  time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg *config.Config, tokenManager *TokenManager, deps Dependencies) *AmazonClient {
	client := &AmazonClient{
		cfg:          cfg.Amazon,
		tokenManager: tokenManager,
		httpClient:   deps.HTTPClient,
		limiter:      deps.Limiter,
		budget:       deps.Budget,
		cache:        deps.Cache,
		cacheTTL:     cfg.Cache.TTL(),
		retry:        deps.Retry,
		observer:     deps.Observer,
		pageSize:     cfg.Amazon.PageSize,
		pollInterval: time.Duration(cfg.Amazon.ReportPollSeconds) * time.Second,
		pollTimeout:  time.Duration(cfg.Amazon.ReportPollTimeoutSeconds) * time.Second,
		now:          time.Now,
		sleep:        sleepContext,
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: time.Duration(cfg.Amazon.RequestTimeoutSeconds) * time.Second}
	}
	if client.cache == nil {
		client.cache = cache.NopCache{}
	}
	if client.observer == nil {
		client.observer = nopObserver{}
	}
	if client.retry.MaxAttempts < 1 {
		client.retry = DefaultRetryPolicy()
	}
	if client.pageSize < 1 {
		client.pageSize = 1000
	}
	if client.pollInterval <= 0 {
		client.pollInterval = 5 * time.Second
	}
	if client.pollTimeout <= 0 {
		client.pollTimeout = 3 * time.Minute
	}

	return client
}

type request struct {
	method    string
	path      string
	endpoint  string
	query     url.Values
	body      any
	profileID string
	cacheable bool
	headers   map[string]string
	// absolute indica URL externa pré-assinada (download de relatório), sem autenticação.
	absolute bool
}

// do executa a chamada aplicando cache, limitador, renovação de token e retry.
func (c *AmazonClient) do(ctx context.Context, r request) ([]byte, error) {
	if r.endpoint == "" {
		r.endpoint = r.path
	}

	var cacheKey string
	if r.cacheable && r.method == http.MethodGet {
		cacheKey = cache.Key(r.profileID, r.path, r.query)
		if body, found := c.cache.Get(cacheKey); found {
			c.observer.ObserveCache(true)
			return body, nil
		}
		c.observer.ObserveCache(false)
	}

	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar corpo de %s: %w", r.endpoint, err)
		}
	}

	refreshed := false
	attempt := 0
	for {
		attempt++

		if err := c.limiter.Acquire(ctx, 1); err != nil {
			return nil, err
		}

		token := ""
		if !r.absolute {
			var err error
			token, err = c.tokenManager.AccessToken(ctx)
			if err != nil {
				return nil, err
			}
		}

		body, resp, err := c.send(ctx, r, payload, token)

		var (
			retryErr   error
			retryAfter time.Duration
		)

		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			retryErr = fmt.Errorf("%w: %s: %v", domain.ErrTransientAPI, r.endpoint, err)

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if cacheKey != "" {
				if err := c.cache.Set(cacheKey, body, c.cacheTTL); err != nil {
					logrus.WithError(err).WithField("endpoint", r.endpoint).Warn("amazon: falha ao gravar cache")
				}
			}
			return body, nil

		case (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) && !r.absolute:
			if !refreshed {
				logrus.WithFields(logrus.Fields{
					"endpoint": r.endpoint,
					"status":   resp.StatusCode,
				}).Warn("amazon: token rejeitado, renovando e tentando novamente")

				c.tokenManager.Invalidate(token)
				refreshed = true
				attempt--
				continue
			}
			return nil, &domain.APIError{StatusCode: resp.StatusCode, Endpoint: r.endpoint, Body: string(body), Err: domain.ErrAuth}

		case resp.StatusCode == http.StatusTooEarly && bytes.Contains(bytes.ToLower(body), []byte("duplicate")):
			return nil, &domain.APIError{StatusCode: resp.StatusCode, Endpoint: r.endpoint, Body: string(body), Err: errDuplicateReport}

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusTooEarly:
			if c.budget != nil {
				c.budget.RecordRateLimited()
			}
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), c.now())
			retryErr = &domain.APIError{StatusCode: resp.StatusCode, Endpoint: r.endpoint, Body: string(body), Err: domain.ErrRateLimitExceeded}

		case resp.StatusCode >= 500:
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), c.now())
			retryErr = &domain.APIError{StatusCode: resp.StatusCode, Endpoint: r.endpoint, Body: string(body), Err: domain.ErrTransientAPI}

		case resp.StatusCode == http.StatusRequestEntityTooLarge || isBatchTooLarge(resp.StatusCode, body):
			return nil, &domain.APIError{StatusCode: resp.StatusCode, Endpoint: r.endpoint, Body: string(body), Err: domain.ErrBatchTooLarge}

		default:
			logrus.WithFields(logrus.Fields{
				"endpoint": r.endpoint,
				"status":   resp.StatusCode,
			}).Debugf("amazon: resposta inesperada\n%s", utils.PrettyJson(body))
			return nil, &domain.APIError{StatusCode: resp.StatusCode, Endpoint: r.endpoint, Body: string(body)}
		}

		if attempt >= c.retry.MaxAttempts {
			logrus.WithFields(logrus.Fields{
				"endpoint": r.endpoint,
				"attempts": attempt,
			}).WithError(retryErr).Error("amazon: tentativas esgotadas")
			return nil, retryErr
		}

		delay := c.retry.Delay(attempt, retryAfter)
		reason := "transient"
		if errors.Is(retryErr, domain.ErrRateLimitExceeded) {
			reason = "rate_limit"
		}
		c.observer.ObserveRetry(r.endpoint, reason)

		logrus.WithFields(logrus.Fields{
			"endpoint": r.endpoint,
			"attempt":  attempt,
			"delay":    delay.String(),
			"reason":   reason,
		}).Warn("amazon: nova tentativa agendada")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *AmazonClient) send(ctx context.Context, r request, payload []byte, token string) ([]byte, *http.Response, error) {
	target := r.path
	if !r.absolute {
		target = strings.TrimRight(c.cfg.BaseURL, "/") + r.path
	}
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}

	if !r.absolute {
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Amazon-Advertising-API-ClientId", c.cfg.ClientID)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if r.profileID != "" {
			req.Header.Set("Amazon-Advertising-API-Scope", r.profileID)
		}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.ObserveRequest(r.method, r.endpoint, 0, c.now().Sub(start))
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observer.ObserveRequest(r.method, r.endpoint, resp.StatusCode, c.now().Sub(start))
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	return body, resp, nil
}

func isBatchTooLarge(status int, body []byte) bool {
	if status != http.StatusBadRequest && status != http.StatusUnprocessableEntity {
		return false
	}

	var errResp amazondomain.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return false
	}
	return errResp.IsBatchTooLarge()
}

// purge remove do cache as leituras de um caminho após uma escrita bem-sucedida.
func (c *AmazonClient) purge(profileID, path string) {
	removed, err := c.cache.PurgePrefix(cache.PathPrefix(profileID, path))
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("amazon: falha ao invalidar cache")
		return
	}
	if removed > 0 {
		logrus.WithFields(logrus.Fields{
			"path":    path,
			"removed": removed,
		}).Debug("amazon: cache invalidado após escrita")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
