package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ppc-optimizer/infrastructure/cache"
	"github.com/vfg2006/ppc-optimizer/infrastructure/database/postgres"
	"github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon"
	"github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/amazonclient"
	"github.com/vfg2006/ppc-optimizer/infrastructure/migration"
	"github.com/vfg2006/ppc-optimizer/infrastructure/repository"
	"github.com/vfg2006/ppc-optimizer/internal/audit"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/metrics"
	"github.com/vfg2006/ppc-optimizer/internal/optimizer"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/applying"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/optimizing"
	"github.com/vfg2006/ppc-optimizer/pkg/log"
	"github.com/vfg2006/ppc-optimizer/pkg/ratelimit"
)

// App reúne os componentes do processo. O RateBudget e o cache são criados
// uma única vez e compartilhados por todas as chamadas à API de anúncios.
type App struct {
	Config       *config.Config
	Budget       *ratelimit.RateBudget
	Limiter      *ratelimit.TokenBucket
	Cache        cache.ResponseCache
	Metrics      *metrics.Metrics
	TokenManager *amazonclient.TokenManager
	Integrator   *amazon.AmazonIntegrator
	Engine       *optimizer.Engine
	Optimizer    *optimizing.Service
	RunRepo      repository.RunRepository

	db *postgres.Connection
}

// New monta o grafo de dependências. Erros de configuração voltam embrulhados em ErrConfig.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	budget, err := ratelimit.NewRateBudget(cfg.RateLimit.Capacity, time.Duration(cfg.RateLimit.RefillSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.NewTokenBucket(budget, time.Duration(cfg.RateLimit.MaxWaitSeconds)*time.Second)

	responseCache := cache.OpenOrNop(cfg.Cache.Path, cfg.Cache.Enabled)

	m := metrics.New()
	m.RegisterRateBudget(budget)

	httpClient := &http.Client{Timeout: time.Duration(cfg.Amazon.RequestTimeoutSeconds) * time.Second}
	tokenManager := amazonclient.NewTokenManager(cfg.Amazon, httpClient, limiter)

	client := amazonclient.NewClient(cfg, tokenManager, amazonclient.Dependencies{
		HTTPClient: httpClient,
		Limiter:    limiter,
		Budget:     budget,
		Cache:      responseCache,
		Retry:      amazonclient.NewRetryPolicy(cfg.Retry),
		Observer:   m,
	})
	integrator := amazon.New(cfg, client)

	engine, err := optimizer.NewEngine(cfg.Rules)
	if err != nil {
		_ = responseCache.Close()
		return nil, err
	}

	applier := applying.NewBatchApplier(integrator, cfg.Rules, cfg.Retry.SingleItemRetryOnce)

	a := &App{
		Config:       cfg,
		Budget:       budget,
		Limiter:      limiter,
		Cache:        responseCache,
		Metrics:      m,
		TokenManager: tokenManager,
		Integrator:   integrator,
		Engine:       engine,
	}

	sinks := []audit.Sink{audit.NewLogSink(log.L)}
	if cfg.Database.Enabled() {
		if err := a.connectDatabase(ctx); err != nil {
			_ = responseCache.Close()
			return nil, err
		}
		sinks = append(sinks, audit.NewRepositorySink(a.RunRepo, repository.NewAuditRepository(a.db)))
	} else {
		logrus.Info("app: DATABASE_URL ausente, auditoria apenas em log")
	}

	a.Optimizer = optimizing.NewService(cfg, integrator, engine, applier, sinks...).WithRecorder(m)

	return a, nil
}

func (a *App) connectDatabase(ctx context.Context) error {
	if a.Config.Database.Migrate {
		if err := migration.Migrate(a.Config.Database.DSN); err != nil {
			return fmt.Errorf("erro ao aplicar migrações: %w", err)
		}
	}

	conn, err := postgres.NewConnection(ctx, a.Config.Database)
	if err != nil {
		return fmt.Errorf("erro ao conectar ao PostgreSQL: %w", err)
	}

	logrus.Info("app: conexão com PostgreSQL estabelecida com sucesso")
	a.db = conn
	a.RunRepo = repository.NewRunRepository(conn)
	return nil
}

// Close libera o cache em disco e a conexão com o banco.
func (a *App) Close() {
	a.TokenManager.StopAutoRefresh()

	if err := a.Cache.Close(); err != nil {
		logrus.WithError(err).Warn("app: erro ao fechar o cache")
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logrus.WithError(err).Warn("app: erro ao fechar conexão com PostgreSQL")
		}
	}
}
