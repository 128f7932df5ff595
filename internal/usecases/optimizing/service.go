package optimizing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vfg2006/ppc-optimizer/internal/audit"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/internal/optimizer"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/applying"
	"github.com/vfg2006/ppc-optimizer/pkg/log"
	"github.com/vfg2006/ppc-optimizer/pkg/utils"
)

type RunRequest struct {
	ProfileID string
	Trigger   domain.Trigger
	DryRun    bool
	Features  []string
}

// Service executa o ciclo buscar → decidir → aplicar → registrar para um perfil.
type Service struct {
	fetcher    Fetcher
	engine     *optimizer.Engine
	applier    applying.Applier
	sinks      []audit.Sink
	recorder   Recorder
	runTimeout time.Duration
	now        func() time.Time
	newRunID   func() string

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

func NewService(cfg *config.Config, fetcher Fetcher, engine *optimizer.Engine, applier applying.Applier, sinks ...audit.Sink) *Service {
	return &Service{
		fetcher:    fetcher,
		engine:     engine,
		applier:    applier,
		sinks:      sinks,
		runTimeout: cfg.OptimizerSync.RunTimeout(),
		now:        time.Now,
		newRunID:   utils.NewRunID,
		running:    make(map[string]context.CancelFunc),
	}
}

// WithRecorder registra um observador das execuções finalizadas.
func (s *Service) WithRecorder(recorder Recorder) *Service {
	s.recorder = recorder
	return s
}

// Run executa uma passada completa. O RunRecord é sempre retornado, mesmo em falha;
// o erro só é preenchido para falhas fatais (autenticação, configuração) ou execução concorrente.
func (s *Service) Run(ctx context.Context, req RunRequest) (*domain.RunRecord, error) {
	features, err := domain.ParseFeatures(req.Features)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !s.acquire(req.ProfileID, cancel) {
		return nil, fmt.Errorf("%w: perfil %s", domain.ErrRunInProgress, req.ProfileID)
	}
	defer s.release(req.ProfileID)

	if s.runTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, s.runTimeout)
		defer cancelTimeout()
	}

	rules := s.engine.Rules()
	dryRun := req.DryRun || rules.DryRun
	trigger := req.Trigger
	if trigger == "" {
		trigger = domain.TriggerManual
	}

	startedAt := s.now()
	run := domain.NewRunRecord(s.newRunID(), req.ProfileID, trigger, dryRun, features.List(), startedAt)
	ctx = log.WithRun(ctx, run.ID, run.ProfileID)
	logger := log.ForContext(ctx)
	auditLog := audit.NewLog(run.ID, run.ProfileID, s.sinks...)

	logger.WithFields(log.Fields{
		"trigger":  run.Trigger,
		"dry_run":  run.DryRun,
		"features": run.Features,
	}).Info("optimizer: iniciando execução")

	snapshot, err := s.fetcher.FetchSnapshot(ctx, req.ProfileID, rules, features, startedAt)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			logger.Warn("optimizer: execução interrompida durante a busca")
			return s.finish(ctx, run, auditLog, domain.RunStatusCancelled, nil)
		}
		logger.WithError(err).Error("optimizer: falha ao buscar dados da conta")
		return s.finish(ctx, run, auditLog, domain.RunStatusFailed, err)
	}

	decisions := s.engine.Evaluate(snapshot, features, startedAt)
	run.EntitiesEvaluated = len(decisions)
	actions := domain.Actions(decisions)

	logger.WithFields(log.Fields{
		"evaluated": len(decisions),
		"actions":   len(actions),
	}).Info("optimizer: decisões calculadas")

	report, applyErr := s.applier.Apply(ctx, req.ProfileID, actions, dryRun)
	if report == nil {
		report = &applying.Report{}
	}

	if err := s.record(run, auditLog, decisions, report); err != nil {
		logger.WithError(err).Error("optimizer: falha ao montar auditoria")
		return s.finish(ctx, run, auditLog, domain.RunStatusFailed, err)
	}

	status := domain.RunStatusCompleted
	switch {
	case applyErr != nil:
		status = domain.RunStatusFailed
	case report.Cancelled:
		status = domain.RunStatusCancelled
	case report.Truncated:
		status = domain.RunStatusCompletedWithTruncation
	}

	return s.finish(ctx, run, auditLog, status, applyErr)
}

// record casa cada decisão com o resultado da sua ação, na mesma ordem em que as ações foram extraídas.
func (s *Service) record(run *domain.RunRecord, auditLog *audit.Log, decisions []domain.Decision, report *applying.Report) error {
	next := 0
	for _, decision := range decisions {
		var result *domain.ActionResult
		if decision.Action != nil {
			if next >= len(report.Results) {
				return fmt.Errorf("resultado ausente para a ação %d", next)
			}
			result = &report.Results[next]
			run.AddResult(*result)
			next++
		}

		if _, err := auditLog.Record(decision, result); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) finish(ctx context.Context, run *domain.RunRecord, auditLog *audit.Log, status domain.RunStatus, fatal error) (*domain.RunRecord, error) {
	run.Finalize(status, s.now(), fatal)

	if err := auditLog.Flush(context.WithoutCancel(ctx), run); err != nil {
		log.ForContext(ctx).WithError(err).Error("optimizer: falha ao gravar auditoria")
	}
	if s.recorder != nil {
		s.recorder.ObserveRun(run)
	}

	log.ForContext(ctx).Info(run.Summary())

	if fatal != nil && domain.IsFatal(fatal) {
		return run, fatal
	}
	return run, nil
}

func (s *Service) acquire(profileID string, cancel context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.running[profileID]; ok {
		return false
	}
	s.running[profileID] = cancel
	return true
}

func (s *Service) release(profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, profileID)
}

// Stop pede a parada da execução do perfil (ou de todas, com profileID vazio).
// A execução termina no próximo limite de lote.
func (s *Service) Stop(profileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	stopped := false
	for id, cancel := range s.running {
		if profileID == "" || id == profileID {
			cancel()
			stopped = true
		}
	}
	return stopped
}

// Running lista os perfis com execução em andamento.
func (s *Service) Running() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.running))
	for id := range s.running {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
