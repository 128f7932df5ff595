package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/ppc-optimizer/infrastructure/database/postgres"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

//go:generate mockgen -source=audit.go -destination=mocks/audit_mock.go -package=mocks

const (
	auditTable = "audit_entries"

	// Limite de linhas por INSERT; cada linha usa 18 parâmetros e o Postgres aceita 65535.
	auditInsertChunk = 500
)

var auditColumns = []string{
	"id", "run_id", "profile_id", "entity_id", "entity_type", "entity_name", "action_type",
	"old_value", "new_value", "reason", "flag", "outcome", "skip_reason", "error",
	"impact_percent", "metrics", "action", "recorded_at",
}

type AuditRepository interface {
	SaveEntries(ctx context.Context, entries []domain.AuditEntry) error
	ListByRun(ctx context.Context, runID string) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	conn postgres.Conn
}

func NewAuditRepository(conn postgres.Conn) AuditRepository {
	return &auditRepository{
		conn: conn,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func buildInsertAuditQuery(entries []domain.AuditEntry) (string, []interface{}, error) {
	builder := squirrel.
		Insert(auditTable).
		Columns(auditColumns...).
		Suffix("ON CONFLICT (id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	for _, e := range entries {
		metrics, err := json.Marshal(e.Metrics)
		if err != nil {
			return "", nil, fmt.Errorf("erro ao serializar métricas: %w", err)
		}

		var action *string
		if e.Action != nil {
			raw, err := json.Marshal(e.Action)
			if err != nil {
				return "", nil, fmt.Errorf("erro ao serializar ação: %w", err)
			}
			action = nullable(string(raw))
		}

		builder = builder.Values(
			e.ID,
			e.RunID,
			e.ProfileID,
			e.EntityID,
			string(e.EntityType),
			e.EntityName,
			nullable(string(e.ActionType)),
			e.OldValue,
			nullable(e.NewValue),
			e.Reason,
			string(e.Flag),
			string(e.Outcome),
			nullable(string(e.SkipReason)),
			nullable(e.Error),
			e.ImpactPercent,
			string(metrics),
			action,
			e.RecordedAt,
		)
	}

	return builder.ToSql()
}

// SaveEntries grava as entradas em lotes dentro de uma única transação.
func (r *auditRepository) SaveEntries(ctx context.Context, entries []domain.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(entries); start += auditInsertChunk {
			end := min(start+auditInsertChunk, len(entries))

			query, args, err := buildInsertAuditQuery(entries[start:end])
			if err != nil {
				return fmt.Errorf("erro ao construir a query: %w", err)
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("erro ao gravar auditoria: %w", err)
			}
		}
		return nil
	})
}

func (r *auditRepository) ListByRun(ctx context.Context, runID string) ([]domain.AuditEntry, error) {
	query, args, err := squirrel.
		Select(auditColumns...).
		From(auditTable).
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("recorded_at ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear auditoria: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return entries, nil
}

func scanAuditEntry(rows *sql.Rows) (domain.AuditEntry, error) {
	var (
		e          domain.AuditEntry
		entityType string
		entityName sql.NullString
		actionType sql.NullString
		oldValue   sql.NullString
		newValue   sql.NullString
		flag       string
		outcome    string
		skipReason sql.NullString
		errText    sql.NullString
		metrics    []byte
		action     []byte
	)

	err := rows.Scan(
		&e.ID,
		&e.RunID,
		&e.ProfileID,
		&e.EntityID,
		&entityType,
		&entityName,
		&actionType,
		&oldValue,
		&newValue,
		&e.Reason,
		&flag,
		&outcome,
		&skipReason,
		&errText,
		&e.ImpactPercent,
		&metrics,
		&action,
		&e.RecordedAt,
	)
	if err != nil {
		return e, err
	}

	e.EntityType = domain.EntityType(entityType)
	e.EntityName = entityName.String
	e.ActionType = domain.ActionType(actionType.String)
	e.OldValue = oldValue.String
	e.NewValue = newValue.String
	e.Flag = domain.DecisionFlag(flag)
	e.Outcome = domain.Outcome(outcome)
	e.SkipReason = domain.SkipReason(skipReason.String)
	e.Error = errText.String

	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &e.Metrics); err != nil {
			return e, fmt.Errorf("erro ao deserializar métricas: %w", err)
		}
	}
	if len(action) > 0 {
		e.Action = &domain.Action{}
		if err := json.Unmarshal(action, e.Action); err != nil {
			return e, fmt.Errorf("erro ao deserializar ação: %w", err)
		}
	}

	return e, nil
}
