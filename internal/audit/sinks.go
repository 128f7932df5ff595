package audit

import (
	"context"
	"fmt"

	"github.com/vfg2006/ppc-optimizer/infrastructure/repository"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/pkg/log"
)

// LogSink escreve cada entrada como uma linha estruturada.
// Decisões sem ação vão para debug para não poluir o log de produção.
type LogSink struct {
	logger log.Logger
}

func NewLogSink(logger log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, run *domain.RunRecord, entries []domain.AuditEntry) error {
	logger := s.logger.WithContext(ctx)

	for _, e := range entries {
		entryLogger := logger.WithFields(log.Fields{
			"run_id":      e.RunID,
			"entity_id":   e.EntityID,
			"entity_type": e.EntityType,
			"old_value":   e.OldValue,
			"new_value":   e.NewValue,
			"flag":        e.Flag,
			"outcome":     e.Outcome,
		})
		if e.SkipReason != "" {
			entryLogger = entryLogger.WithField("skip_reason", e.SkipReason)
		}

		switch {
		case e.Outcome == domain.OutcomeFailed:
			entryLogger.WithField("error", e.Error).Warnf("auditoria: %s", e.Reason)
		case e.Action == nil:
			entryLogger.Debugf("auditoria: %s", e.Reason)
		default:
			entryLogger.Infof("auditoria: %s", e.Reason)
		}
	}

	return nil
}

// RepositorySink persiste a execução e a trilha no Postgres.
type RepositorySink struct {
	runs   repository.RunRepository
	audits repository.AuditRepository
}

func NewRepositorySink(runs repository.RunRepository, audits repository.AuditRepository) *RepositorySink {
	return &RepositorySink{runs: runs, audits: audits}
}

func (s *RepositorySink) Write(ctx context.Context, run *domain.RunRecord, entries []domain.AuditEntry) error {
	// A execução precisa existir antes das entradas (chave estrangeira).
	if err := s.runs.Save(ctx, run); err != nil {
		return fmt.Errorf("erro ao salvar execução %s: %w", run.ID, err)
	}

	if err := s.audits.SaveEntries(ctx, entries); err != nil {
		return fmt.Errorf("erro ao salvar auditoria da execução %s: %w", run.ID, err)
	}

	return nil
}
