package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/pkg/ratelimit"
)

// Metrics reúne as métricas do otimizador em um registro próprio.
type Metrics struct {
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIRetriesTotal           *prometheus.CounterVec
	CacheRequestsTotal        *prometheus.CounterVec

	RunsTotal           *prometheus.CounterVec
	RunDurationSeconds  prometheus.Histogram
	ActionsTotal        *prometheus.CounterVec
	LastRunTimestamp    *prometheus.GaugeVec
	LastRunEntitiesEval *prometheus.GaugeVec

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppc_api_requests_total",
				Help: "Total de chamadas à API de anúncios por endpoint e status HTTP",
			},
			[]string{"method", "endpoint", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ppc_api_request_duration_seconds",
				Help:    "Duração das chamadas à API de anúncios",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		APIRetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppc_api_retries_total",
				Help: "Total de novas tentativas por endpoint e motivo",
			},
			[]string{"endpoint", "reason"},
		),
		CacheRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppc_cache_requests_total",
				Help: "Consultas ao cache de respostas",
			},
			[]string{"result"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppc_runs_total",
				Help: "Execuções do otimizador por status e modo",
			},
			[]string{"status", "mode"},
		),
		RunDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ppc_run_duration_seconds",
				Help:    "Duração das execuções do otimizador",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
		),
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppc_actions_total",
				Help: "Ações por tipo e desfecho",
			},
			[]string{"type", "outcome"},
		),
		LastRunTimestamp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ppc_last_run_timestamp_seconds",
				Help: "Horário de término da última execução por perfil",
			},
			[]string{"profile_id"},
		),
		LastRunEntitiesEval: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ppc_last_run_entities_evaluated",
				Help: "Entidades avaliadas na última execução por perfil",
			},
			[]string{"profile_id"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIRetriesTotal,
		m.CacheRequestsTotal,
		m.RunsTotal,
		m.RunDurationSeconds,
		m.ActionsTotal,
		m.LastRunTimestamp,
		m.LastRunEntitiesEval,
	)

	return m
}

// RegisterRateBudget expõe o estado do limitador compartilhado. Os valores são lidos na coleta.
func (m *Metrics) RegisterRateBudget(budget *ratelimit.RateBudget) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "ppc_rate_budget_tokens_available",
				Help: "Tokens disponíveis no limitador de requisições",
			},
			func() float64 { return budget.Stats(time.Now()).TokensAvailable },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "ppc_rate_budget_capacity",
				Help: "Capacidade do limitador de requisições",
			},
			func() float64 { return float64(budget.Capacity()) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "ppc_rate_budget_acquired_total",
				Help: "Tokens concedidos pelo limitador",
			},
			func() float64 { return float64(budget.Stats(time.Now()).TotalRequests) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "ppc_rate_limited_responses_total",
				Help: "Respostas 429 recebidas da API",
			},
			func() float64 { return float64(budget.Stats(time.Now()).RateLimitedResponses) },
		),
	)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest registra uma chamada HTTP. Status 0 indica erro de rede.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, duration time.Duration) {
	m.APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.APIRequestDurationSeconds.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func (m *Metrics) ObserveRetry(endpoint, reason string) {
	m.APIRetriesTotal.WithLabelValues(endpoint, reason).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// ObserveRun registra o desfecho de uma execução finalizada.
func (m *Metrics) ObserveRun(run *domain.RunRecord) {
	mode := "live"
	if run.DryRun {
		mode = "dry_run"
	}

	m.RunsTotal.WithLabelValues(string(run.Status), mode).Inc()
	m.RunDurationSeconds.Observe(run.Duration().Seconds())
	m.LastRunTimestamp.WithLabelValues(run.ProfileID).Set(float64(run.EndedAt.Unix()))
	m.LastRunEntitiesEval.WithLabelValues(run.ProfileID).Set(float64(run.EntitiesEvaluated))

	for _, res := range run.Results {
		m.ActionsTotal.WithLabelValues(string(res.Action.Type), string(res.Outcome)).Inc()
	}
}
