package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/pkg/utils"
)

//go:generate mockgen -source=audit.go -destination=mocks/audit_mock.go -package=mocks

// Sink recebe o registro da execução e as entradas de auditoria ao final de cada execução.
type Sink interface {
	Write(ctx context.Context, run *domain.RunRecord, entries []domain.AuditEntry) error
}

// Log é a trilha de auditoria de uma execução. Entradas só são acrescentadas.
type Log struct {
	runID     string
	profileID string
	now       func() time.Time
	sinks     []Sink

	mu      sync.Mutex
	entries []domain.AuditEntry
}

func NewLog(runID, profileID string, sinks ...Sink) *Log {
	return &Log{
		runID:     runID,
		profileID: profileID,
		now:       time.Now,
		sinks:     sinks,
		entries:   make([]domain.AuditEntry, 0),
	}
}

// NewEntry monta a entrada de uma decisão. result é nil quando a decisão não propôs ação.
func NewEntry(runID, profileID string, decision domain.Decision, result *domain.ActionResult, now time.Time) (domain.AuditEntry, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("erro ao gerar id da auditoria: %w", err)
	}

	entry := domain.AuditEntry{
		ID:         id,
		RunID:      runID,
		ProfileID:  profileID,
		EntityID:   decision.EntityID,
		EntityType: decision.EntityType,
		EntityName: decision.EntityName,
		OldValue:   decision.OldValue,
		Reason:     decision.Reason,
		Flag:       decision.Flag,
		Metrics:    decision.Metrics,
		RecordedAt: now.UTC(),
	}

	if decision.Action == nil {
		entry.Outcome = domain.OutcomeSkipped
		entry.SkipReason = domain.SkipNoAction
		return entry, nil
	}

	action := *decision.Action
	entry.Action = &action
	entry.ActionType = action.Type
	entry.NewValue = action.NewValue()
	entry.ImpactPercent = action.ImpactPercent
	if old := action.OldValue(); old != "" {
		entry.OldValue = old
	}

	if result == nil {
		return domain.AuditEntry{}, fmt.Errorf("ação %s para %s sem resultado", action.Type, action.EntityID)
	}

	entry.Outcome = result.Outcome
	entry.SkipReason = result.SkipReason
	entry.Error = result.Error

	return entry, nil
}

// Record acrescenta a entrada de uma decisão à trilha.
func (l *Log) Record(decision domain.Decision, result *domain.ActionResult) (domain.AuditEntry, error) {
	entry, err := NewEntry(l.runID, l.profileID, decision, result, l.now())
	if err != nil {
		return entry, err
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	return entry, nil
}

// Entries retorna uma cópia das entradas na ordem de registro.
func (l *Log) Entries() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Flush entrega a execução e as entradas a todos os sinks. A falha de um sink não impede os demais.
func (l *Log) Flush(ctx context.Context, run *domain.RunRecord) error {
	entries := l.Entries()

	var errs []error
	for _, sink := range l.sinks {
		if err := sink.Write(ctx, run, entries); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
