package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ppc-optimizer/infrastructure/repository"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/optimizing"
)

//go:generate mockgen -source=optimizer_sync.go -destination=mocks/optimizer_sync_mock.go -package=mocks

// Runner executa uma passada do otimizador. Implementado por optimizing.Service.
type Runner interface {
	Run(ctx context.Context, req optimizing.RunRequest) (*domain.RunRecord, error)
	Stop(profileID string) bool
	Running() []string
}

// OptimizerSyncConfig representa a configuração do agendador do otimizador
type OptimizerSyncConfig struct {
	CronSchedule      string
	ProfileIDs        []string
	MaxConcurrentJobs int
	SyncEnabled       bool
	DryRun            bool
}

// OptimizerSyncService agenda as execuções periódicas e atende disparos manuais.
type OptimizerSyncService struct {
	scheduler *gocron.Scheduler
	config    OptimizerSyncConfig
	runner    Runner
	runRepo   repository.RunRepository
	ctx       context.Context

	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	latest              map[string]*domain.RunRecord
}

func NewOptimizerSyncService(runner Runner, appConfig *config.Config) *OptimizerSyncService {
	syncConfig := OptimizerSyncConfig{
		CronSchedule:      appConfig.OptimizerSync.CronSchedule,
		ProfileIDs:        appConfig.Amazon.ProfileIDs,
		MaxConcurrentJobs: max(appConfig.OptimizerSync.MaxConcurrentJobs, 1),
		SyncEnabled:       appConfig.OptimizerSync.Enabled,
		DryRun:            appConfig.Rules.DryRun,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"profiles":            len(syncConfig.ProfileIDs),
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"sync_enabled":        syncConfig.SyncEnabled,
		"dry_run":             syncConfig.DryRun,
	}).Info("Configuração do agendador do otimizador carregada")

	return &OptimizerSyncService{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    syncConfig,
		runner:    runner,
		ctx:       context.Background(),
		latest:    make(map[string]*domain.RunRecord),
	}
}

// WithRunRepository permite consultar a última execução no banco quando ela não está em memória.
func (s *OptimizerSyncService) WithRunRepository(runRepo repository.RunRepository) *OptimizerSyncService {
	s.runRepo = runRepo
	return s
}

// Start inicia o agendador
func (s *OptimizerSyncService) Start(ctx context.Context) error {
	s.ctx = ctx

	if !s.config.SyncEnabled {
		logrus.Info("Execução agendada do otimizador desabilitada por configuração")
		return nil
	}

	if len(s.config.ProfileIDs) == 0 {
		return fmt.Errorf("%w: nenhum perfil configurado para a execução agendada", domain.ErrConfig)
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do otimizador")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAllProfiles()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar otimizador: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do otimizador")
		s.scheduler.Stop()
		s.runner.Stop("")
	}()

	return nil
}

// syncAllProfiles executa o otimizador para todos os perfis configurados
func (s *OptimizerSyncService) syncAllProfiles() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Execução agendada já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastSyncCompletedAt = time.Now()
		s.syncMutex.Unlock()
	}()

	logrus.WithField("profiles", len(s.config.ProfileIDs)).Info("Iniciando execução agendada do otimizador")

	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for _, profileID := range s.config.ProfileIDs {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(profileID string) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			_, _ = s.execute(s.ctx, optimizing.RunRequest{
				ProfileID: profileID,
				Trigger:   domain.TriggerScheduled,
				DryRun:    s.config.DryRun,
			})
		}(profileID)
	}

	wg.Wait()
	logrus.Info("Execução agendada do otimizador concluída")
}

func (s *OptimizerSyncService) execute(ctx context.Context, req optimizing.RunRequest) (*domain.RunRecord, error) {
	run, err := s.runner.Run(ctx, req)
	if run != nil {
		s.syncMutex.Lock()
		s.latest[run.ProfileID] = run
		s.syncMutex.Unlock()
	}

	if err != nil {
		fields := logrus.Fields{"profile_id": req.ProfileID, "trigger": req.Trigger}
		if errors.Is(err, domain.ErrRunInProgress) {
			logrus.WithFields(fields).Warn("Execução já em andamento para o perfil, ignorando")
		} else {
			logrus.WithFields(fields).WithError(err).Error("Execução do otimizador abortada por erro fatal")
		}
	}

	return run, err
}

// TriggerManualRun dispara uma execução em segundo plano. Retorna ErrRunInProgress
// quando o perfil já está em execução.
func (s *OptimizerSyncService) TriggerManualRun(req optimizing.RunRequest) error {
	if req.ProfileID == "" {
		return domain.NewValidationError("profile_id", "obrigatório")
	}
	if _, err := domain.ParseFeatures(req.Features); err != nil {
		return err
	}

	for _, id := range s.runner.Running() {
		if id == req.ProfileID {
			return fmt.Errorf("%w: perfil %s", domain.ErrRunInProgress, req.ProfileID)
		}
	}

	req.Trigger = domain.TriggerManual
	logrus.WithField("profile_id", req.ProfileID).Info("Iniciando execução manual do otimizador")
	go func() {
		_, _ = s.execute(s.ctx, req)
	}()

	return nil
}

// RunNow executa de forma síncrona e devolve o registro da execução.
func (s *OptimizerSyncService) RunNow(ctx context.Context, req optimizing.RunRequest) (*domain.RunRecord, error) {
	req.Trigger = domain.TriggerManual
	return s.execute(ctx, req)
}

// StopRuns pede a parada de emergência. Com profileID vazio, para todas as execuções.
func (s *OptimizerSyncService) StopRuns(profileID string) bool {
	stopped := s.runner.Stop(profileID)
	logrus.WithFields(logrus.Fields{
		"profile_id": profileID,
		"stopped":    stopped,
	}).Warn("Parada de emergência solicitada")
	return stopped
}

// LatestRun retorna a última execução do perfil, da memória ou do banco.
func (s *OptimizerSyncService) LatestRun(ctx context.Context, profileID string) (*domain.RunRecord, error) {
	s.syncMutex.Lock()
	var latest *domain.RunRecord
	if profileID != "" {
		latest = s.latest[profileID]
	} else {
		for _, run := range s.latest {
			if latest == nil || run.StartedAt.After(latest.StartedAt) {
				latest = run
			}
		}
	}
	s.syncMutex.Unlock()

	if latest != nil || s.runRepo == nil {
		return latest, nil
	}

	return s.runRepo.GetLatest(ctx, profileID)
}

// GetStatus retorna o status atual do agendador
func (s *OptimizerSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"profiles":               s.config.ProfileIDs,
		"dry_run":                s.config.DryRun,
		"sync_running":           s.syncRunning,
		"running_profiles":       s.runner.Running(),
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
