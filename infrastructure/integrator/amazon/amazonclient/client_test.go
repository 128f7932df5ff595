package amazonclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ppc-optimizer/infrastructure/cache"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/pkg/ratelimit"
)

const tokenPath = "/auth/o2/token"

type countingLimiter struct {
	calls atomic.Int64
}

func (l *countingLimiter) Acquire(ctx context.Context, cost int) error {
	l.calls.Add(int64(cost))
	return ctx.Err()
}

type testEnv struct {
	client   *AmazonClient
	server   *httptest.Server
	limiter  *countingLimiter
	budget   *ratelimit.RateBudget
	cache    *cache.BoltCache
	tokens   atomic.Int64
	mu       sync.Mutex
	delays   []time.Duration
	apiCalls atomic.Int64
}

func (e *testEnv) sleeps() []time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]time.Duration(nil), e.delays...)
}

// newTestEnv sobe um servidor falso. O handler recebe apenas as chamadas da API;
// o endpoint de token sempre responde com sucesso, a menos que tokenHandler seja informado.
func newTestEnv(t *testing.T, handler http.HandlerFunc, tokenHandler http.HandlerFunc) *testEnv {
	t.Helper()

	env := &testEnv{limiter: &countingLimiter{}}

	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == tokenPath {
			if tokenHandler != nil {
				tokenHandler(w, r)
				return
			}
			n := env.tokens.Add(1)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"bearer","expires_in":3600}`, n)
			return
		}
		env.apiCalls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(env.server.Close)

	budget, err := ratelimit.NewRateBudget(10, time.Second)
	require.NoError(t, err)
	env.budget = budget

	boltCache, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { boltCache.Close() })
	env.cache = boltCache

	cfg := &config.Config{
		Amazon: config.Amazon{
			ClientID:                 "client",
			ClientSecret:             "secret",
			RefreshToken:             "refresh",
			TokenURL:                 env.server.URL + tokenPath,
			BaseURL:                  env.server.URL,
			UserAgent:                "test-agent",
			PageSize:                 2,
			ReportPollSeconds:        5,
			ReportPollTimeoutSeconds: 60,
		},
		Cache: config.Cache{TTLSeconds: 3600},
	}

	tokenManager := NewTokenManager(cfg.Amazon, env.server.Client(), env.limiter)
	env.client = NewClient(cfg, tokenManager, Dependencies{
		HTTPClient: env.server.Client(),
		Limiter:    env.limiter,
		Budget:     budget,
		Cache:      boltCache,
		Retry:      DefaultRetryPolicy(),
	})
	env.client.sleep = func(ctx context.Context, d time.Duration) error {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.delays = append(env.delays, d)
		return ctx.Err()
	}

	return env
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 5*time.Second, p.Backoff(1))
	assert.Equal(t, 10*time.Second, p.Backoff(2))
	assert.Equal(t, 20*time.Second, p.Backoff(3))
	assert.Equal(t, 40*time.Second, p.Backoff(4))
	assert.Equal(t, 80*time.Second, p.Backoff(5))
	assert.Equal(t, 120*time.Second, p.Backoff(6))
	assert.Equal(t, 120*time.Second, p.Backoff(30))

	assert.Equal(t, 30*time.Second, p.Delay(1, 30*time.Second))
	assert.Equal(t, 10*time.Second, p.Delay(2, time.Second))
	assert.Equal(t, 120*time.Second, p.Delay(1, time.Hour))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 7*time.Second, parseRetryAfter("7", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("abc", now))
	assert.Equal(t, 30*time.Second, parseRetryAfter(now.Add(30*time.Second).Format(http.TimeFormat), now))
}

func TestDo_RateLimitTresVezesDepoisSucesso(t *testing.T) {
	var calls atomic.Int64
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[{"profileId":1,"countryCode":"US","currencyCode":"USD","timezone":"America/Los_Angeles"}]`)
	}, nil)

	profiles, err := env.client.GetProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "1", profiles[0].ID())

	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}, env.sleeps())
	assert.Equal(t, int64(3), env.budget.Stats(time.Now()).RateLimitedResponses)
	// 4 chamadas à API mais a troca de token, todas pelo limitador.
	assert.Equal(t, int64(5), env.limiter.calls.Load())
}

func TestDo_ErroTransitorioEsgotaTentativas(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"code":"SERVER_IS_BUSY"}`)
	}, nil)

	_, err := env.client.ListCampaigns(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransientAPI))
	assert.True(t, domain.IsRetryable(err))

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	assert.Equal(t, int64(5), env.apiCalls.Load())
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 40 * time.Second}, env.sleeps())
}

func TestDo_RateLimitEsgotado(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	_, err := env.client.ListKeywords(context.Background(), "p1")
	assert.True(t, errors.Is(err, domain.ErrRateLimitExceeded))
	assert.Equal(t, []time.Duration{60 * time.Second, 60 * time.Second, 60 * time.Second, 60 * time.Second}, env.sleeps())
}

func TestDo_ErroPermanenteNaoRepete(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":"INVALID_ARGUMENT","details":"bid must be positive"}`)
	}, nil)

	_, err := env.client.UpdateKeywordBids(context.Background(), "p1", []amazondomain.KeywordBidUpdate{{KeywordID: 1, Bid: 1}})
	require.Error(t, err)
	assert.False(t, domain.IsRetryable(err))
	assert.False(t, domain.IsFatal(err))
	assert.Equal(t, int64(1), env.apiCalls.Load())
	assert.Empty(t, env.sleeps())
}

func TestDo_TokenRejeitadoRenovaUmaVez(t *testing.T) {
	var calls atomic.Int64
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
		assert.Equal(t, "p1", r.Header.Get("Amazon-Advertising-API-Scope"))
		assert.Equal(t, "client", r.Header.Get("Amazon-Advertising-API-ClientId"))
		fmt.Fprint(w, `[]`)
	}, nil)

	campaigns, err := env.client.ListCampaigns(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, campaigns)
	assert.Equal(t, int64(2), env.tokens.Load())
}

func TestDo_TokenRejeitadoDuasVezesEhFatal(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)

	_, err := env.client.ListCampaigns(context.Background(), "p1")
	assert.True(t, errors.Is(err, domain.ErrAuth))
	assert.True(t, domain.IsFatal(err))
	assert.Equal(t, int64(2), env.apiCalls.Load())
}

func TestDo_RefreshTokenRevogado(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("a API não deve ser chamada sem token")
	}, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh", r.PostForm.Get("refresh_token"))
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant","error_description":"The request has an invalid grant parameter"}`)
	})

	_, err := env.client.ListCampaigns(context.Background(), "p1")
	assert.True(t, errors.Is(err, domain.ErrAuth))

	_, err = env.client.CheckOAuth(context.Background())
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestDo_CacheEvitaLimitadorERede(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"campaignId":11,"name":"A","state":"enabled","dailyBudget":10}]`)
	}, nil)
	ctx := context.Background()

	first, err := env.client.ListCampaigns(ctx, "p1")
	require.NoError(t, err)
	acquiredAfterFirst := env.limiter.calls.Load()

	second, err := env.client.ListCampaigns(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), env.apiCalls.Load())
	assert.Equal(t, acquiredAfterFirst, env.limiter.calls.Load())

	// Outro perfil não compartilha a entrada.
	_, err = env.client.ListCampaigns(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.apiCalls.Load())
}

func TestMutate_EscritaInvalidaCache(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `[{"keywordId":1,"campaignId":2,"adGroupId":3,"state":"enabled","keywordText":"a","matchType":"exact","bid":0.85}]`)
		case http.MethodPut:
			fmt.Fprint(w, `[{"keywordId":1,"code":"SUCCESS"}]`)
		}
	}, nil)
	ctx := context.Background()

	_, err := env.client.ListKeywords(ctx, "p1")
	require.NoError(t, err)

	results, err := env.client.UpdateKeywordBids(ctx, "p1", []amazondomain.KeywordBidUpdate{{KeywordID: 1, Bid: 1.00}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())

	_, err = env.client.ListKeywords(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), env.apiCalls.Load())
}

func TestMutate_ResultadoParcial(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultiStatus)
		fmt.Fprint(w, `[{"keywordId":1,"code":"SUCCESS"},{"keywordId":2,"code":"INVALID_ARGUMENT","details":"bid too high"}]`)
	}, nil)

	results, err := env.client.UpdateKeywordBids(context.Background(), "p1", []amazondomain.KeywordBidUpdate{{KeywordID: 1, Bid: 1}, {KeywordID: 2, Bid: 9}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.Equal(t, "bid too high", results[1].Details)
}

func TestMutate_DivideLoteGrande(t *testing.T) {
	var sizes []int
	var mu sync.Mutex
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		var items []amazondomain.KeywordCreate
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &items))

		mu.Lock()
		sizes = append(sizes, len(items))
		mu.Unlock()

		if len(items) > 2 {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		out := make([]string, len(items))
		for i := range items {
			out[i] = fmt.Sprintf(`{"keywordId":%d,"code":"SUCCESS"}`, 100+i)
		}
		fmt.Fprint(w, "["+strings.Join(out, ",")+"]")
	}, nil)

	keywords := make([]amazondomain.KeywordCreate, 5)
	for i := range keywords {
		keywords[i] = amazondomain.KeywordCreate{CampaignID: 1, AdGroupID: 2, KeywordText: fmt.Sprintf("kw %d", i), MatchType: "exact", State: "enabled", Bid: 0.5}
	}

	results, err := env.client.CreateKeywords(context.Background(), "p1", keywords)
	require.NoError(t, err)
	assert.Len(t, results, 5)
	// 5 -> (2, 3) -> 3 -> (1, 2)
	assert.Equal(t, []int{5, 2, 3, 1, 2}, sizes)
	assert.Empty(t, env.sleeps())
}

func TestListPaged_PercorrePaginas(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		switch r.URL.Query().Get("startIndex") {
		case "0":
			fmt.Fprint(w, `[{"adGroupId":1,"campaignId":9},{"adGroupId":2,"campaignId":9}]`)
		case "2":
			fmt.Fprint(w, `[{"adGroupId":3,"campaignId":9}]`)
		default:
			t.Errorf("página inesperada %s", r.URL.RawQuery)
		}
	}, nil)

	adGroups, err := env.client.ListAdGroups(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, adGroups, 3)
	assert.Equal(t, int64(3), adGroups[2].AdGroupID)
}

func TestGetKeywordSuggestions(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/sp/adGroups/77/suggested/keywords", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("maxNumSuggestions"))
		fmt.Fprint(w, `{"adGroupId":77,"suggestedKeywords":[{"keywordText":"running shoes","matchType":"broad"}]}`)
	}, nil)

	suggestions, err := env.client.GetKeywordSuggestions(context.Background(), "p1", "77", 100)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "running shoes", suggestions[0].KeywordText)
}

func gzipBytes(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestFetchReport_CriaAguardaEBaixa(t *testing.T) {
	var polls atomic.Int64
	var serverURL string
	report := gzipBytes(t, `[{"campaignId":11,"adGroupId":22,"keywordId":33,"keyword":"tenis","matchType":"EXACT","impressions":1000,"clicks":20,"cost":5.6,"purchases14d":2,"sales14d":20}]`)

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/reporting/reports":
			assert.Equal(t, contentTypeReport, r.Header.Get("Content-Type"))
			var req amazondomain.CreateReportRequest
			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, amazondomain.ReportTargeting, req.Configuration.ReportTypeID)
			assert.Equal(t, "2025-02-24", req.StartDate)
			assert.Equal(t, "SUMMARY", req.Configuration.TimeUnit)
			fmt.Fprint(w, `{"reportId":"r-1","status":"PENDING"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/reporting/reports/r-1":
			if polls.Add(1) < 3 {
				fmt.Fprint(w, `{"reportId":"r-1","status":"PROCESSING"}`)
				return
			}
			fmt.Fprintf(w, `{"reportId":"r-1","status":"COMPLETED","url":"%s/download/r-1"}`, serverURL)
		case r.URL.Path == "/download/r-1":
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Write(report)
		default:
			t.Errorf("chamada inesperada %s %s", r.Method, r.URL.Path)
		}
	}, nil)
	serverURL = env.server.URL

	rows, err := env.client.FetchReport(context.Background(), "p1", amazondomain.ReportTargeting, "2025-02-24", "2025-03-09")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(33), rows[0].KeywordID)
	assert.Equal(t, 20.0, rows[0].Sales14d)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, env.sleeps())

	callsBefore := env.apiCalls.Load()
	cached, err := env.client.FetchReport(context.Background(), "p1", amazondomain.ReportTargeting, "2025-02-24", "2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, rows, cached)
	assert.Equal(t, callsBefore, env.apiCalls.Load())
}

func TestFetchReport_Falha(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"reportId":"r-2","status":"PENDING"}`)
			return
		}
		fmt.Fprint(w, `{"reportId":"r-2","status":"FAILED","failureReason":"internal"}`)
	}, nil)

	_, err := env.client.FetchReport(context.Background(), "p1", amazondomain.ReportCampaigns, "2025-02-24", "2025-03-09")
	assert.True(t, errors.Is(err, domain.ErrTransientAPI))
}

func TestFetchReport_PedidoDuplicadoReaproveitaID(t *testing.T) {
	var serverURL string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusTooEarly)
			fmt.Fprint(w, `{"code":"425","detail":"The Request is a duplicate of : 9b1c2d3e-aaaa-bbbb-cccc-123456789012"}`)
		case r.URL.Path == "/reporting/reports/9b1c2d3e-aaaa-bbbb-cccc-123456789012":
			fmt.Fprintf(w, `{"status":"COMPLETED","url":"%s/download/x"}`, serverURL)
		case r.URL.Path == "/download/x":
			fmt.Fprint(w, `[]`)
		default:
			t.Errorf("chamada inesperada %s %s", r.Method, r.URL.Path)
		}
	}, nil)
	serverURL = env.server.URL

	rows, err := env.client.FetchReport(context.Background(), "p1", amazondomain.ReportSearchTerms, "2025-02-24", "2025-03-09")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, env.sleeps())
}

func TestParseReport_CSVComColunasV2(t *testing.T) {
	csvContent := "campaignId,adGroupId,keywordId,keywordText,matchType,impressions,clicks,cost,attributedConversions14d,attributedSales14d\n" +
		"1,2,3,tenis corrida,exact,1000,20.0,5.60,2,20.00\n" +
		"1,2,4,tenis,broad,,,,,\n"

	for name, raw := range map[string][]byte{
		"texto": []byte(csvContent),
		"gzip":  gzipBytes(t, csvContent),
	} {
		t.Run(name, func(t *testing.T) {
			rows, err := ParseReport(raw)
			require.NoError(t, err)
			require.Len(t, rows, 2)

			assert.Equal(t, "tenis corrida", rows[0].Keyword)
			assert.Equal(t, int64(20), rows[0].Clicks)
			assert.Equal(t, 5.60, rows[0].Cost)
			assert.Equal(t, int64(2), rows[0].Purchases14d)
			assert.Equal(t, 20.0, rows[0].Sales14d)
			assert.Equal(t, int64(0), rows[1].Clicks)
		})
	}

	_, err := ParseReport([]byte("campaignId,clicks\n1,abc\n"))
	assert.Error(t, err)

	rows, err := ParseReport([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCalculateTokenExpiration(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(55*time.Minute), CalculateTokenExpiration(now, 3600))
	assert.Equal(t, now.Add(2*time.Minute), CalculateTokenExpiration(now, 240))
	assert.Equal(t, "1 horas e 0 minutos", FormatDuration(3600))
}
