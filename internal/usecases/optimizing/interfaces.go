package optimizing

import (
	"context"
	"time"

	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces_mock.go -package=mocks

// Fetcher monta o retrato da conta usado pelo motor de decisão.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, profileID string, rules config.Rules, features domain.FeatureSet, now time.Time) (*domain.AccountSnapshot, error)
}

// Recorder recebe o registro finalizado de cada execução (métricas).
type Recorder interface {
	ObserveRun(run *domain.RunRecord)
}
