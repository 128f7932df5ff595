package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/amazonclient"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/optimizing"
	"github.com/vfg2006/ppc-optimizer/pkg/ratelimit"
)

var (
	_ amazonclient.Observer = (*Metrics)(nil)
	_ optimizing.Recorder   = (*Metrics)(nil)
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "list_campaigns", http.StatusOK, 120*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "list_campaigns", http.StatusTooManyRequests, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "list_campaigns", http.StatusOK, 80*time.Millisecond)
	m.ObserveRetry("list_campaigns", "rate_limited")
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("GET", "list_campaigns", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("GET", "list_campaigns", "429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRetriesTotal.WithLabelValues("list_campaigns", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("miss")))
}

func TestObserveRun(t *testing.T) {
	m := New()
	started := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	run := domain.NewRunRecord("run-1", "123", domain.TriggerScheduled, false, domain.AllFeatures, started)
	run.EntitiesEvaluated = 12
	run.AddResult(domain.ActionResult{Action: domain.Action{Type: domain.ActionBidIncrease}, Outcome: domain.OutcomeApplied})
	run.AddResult(domain.ActionResult{Action: domain.Action{Type: domain.ActionBidIncrease}, Outcome: domain.OutcomeFailed})
	run.AddResult(domain.ActionResult{Action: domain.Action{Type: domain.ActionCampaignPause}, Outcome: domain.OutcomeApplied})
	run.Finalize(domain.RunStatusCompleted, started.Add(42*time.Second), nil)

	m.ObserveRun(run)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("completed", "live")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("bid_increase", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("bid_increase", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("campaign_pause", "applied")))
	assert.Equal(t, float64(started.Add(42*time.Second).Unix()), testutil.ToFloat64(m.LastRunTimestamp.WithLabelValues("123")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.LastRunEntitiesEval.WithLabelValues("123")))
}

func TestHandler_ExpoeRateBudget(t *testing.T) {
	m := New()
	budget, err := ratelimit.NewRateBudget(10, time.Second)
	require.NoError(t, err)
	budget.RecordRateLimited()
	m.RegisterRateBudget(budget)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "ppc_rate_budget_capacity 10"), body)
	assert.Contains(t, body, "ppc_rate_limited_responses_total 1")
	assert.Contains(t, body, "ppc_rate_budget_tokens_available")
}
