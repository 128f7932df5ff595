package handler

import (
	"context"

	"github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/amazonclient"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/optimizing"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces_mock.go -package=mocks

// RunScheduler é o lado do agendador usado pela API. Implementado por scheduler.OptimizerSyncService.
type RunScheduler interface {
	TriggerManualRun(req optimizing.RunRequest) error
	RunNow(ctx context.Context, req optimizing.RunRequest) (*domain.RunRecord, error)
	StopRuns(profileID string) bool
	LatestRun(ctx context.Context, profileID string) (*domain.RunRecord, error)
	GetStatus() map[string]any
}

// OAuthChecker valida as credenciais da API de anúncios.
type OAuthChecker interface {
	CheckOAuth(ctx context.Context) (*amazonclient.OAuthCheck, error)
}
