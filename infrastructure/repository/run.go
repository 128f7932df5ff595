package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/vfg2006/ppc-optimizer/infrastructure/database/postgres"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

//go:generate mockgen -source=run.go -destination=mocks/run_mock.go -package=mocks

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const runsTable = "optimizer_runs"

var runColumns = []string{
	"id", "profile_id", "trigger", "dry_run", "features", "status", "started_at", "ended_at",
	"entities_evaluated", "entities_modified", "applied", "skipped", "failed", "fatal_error", "results",
}

type RunRepository interface {
	Save(ctx context.Context, run *domain.RunRecord) error
	GetByID(ctx context.Context, id string) (*domain.RunRecord, error)
	GetLatest(ctx context.Context, profileID string) (*domain.RunRecord, error)
}

type runRepository struct {
	conn postgres.Queryer
}

func NewRunRepository(conn postgres.Queryer) RunRepository {
	return &runRepository{
		conn: conn,
	}
}

func buildSaveRunQuery(run *domain.RunRecord) (string, []interface{}, error) {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return "", nil, fmt.Errorf("erro ao serializar resultados: %w", err)
	}

	var endedAt *time.Time
	if !run.EndedAt.IsZero() {
		endedAt = &run.EndedAt
	}

	var fatalError *string
	if run.FatalError != "" {
		fatalError = &run.FatalError
	}

	return squirrel.
		Insert(runsTable).
		Columns(runColumns...).
		Values(
			run.ID,
			run.ProfileID,
			string(run.Trigger),
			run.DryRun,
			pq.Array(run.Features),
			string(run.Status),
			run.StartedAt,
			endedAt,
			run.EntitiesEvaluated,
			run.EntitiesModified,
			run.Applied,
			run.Skipped,
			run.Failed,
			fatalError,
			string(results),
		).
		Suffix(`
			ON CONFLICT (id) DO UPDATE SET
				status = EXCLUDED.status,
				ended_at = EXCLUDED.ended_at,
				entities_evaluated = EXCLUDED.entities_evaluated,
				entities_modified = EXCLUDED.entities_modified,
				applied = EXCLUDED.applied,
				skipped = EXCLUDED.skipped,
				failed = EXCLUDED.failed,
				fatal_error = EXCLUDED.fatal_error,
				results = EXCLUDED.results,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// Save insere ou atualiza o registro. É chamado no início (running) e ao final da execução.
func (r *runRepository) Save(ctx context.Context, run *domain.RunRecord) error {
	query, args, err := buildSaveRunQuery(run)
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *runRepository) GetByID(ctx context.Context, id string) (*domain.RunRecord, error) {
	query, args, err := squirrel.
		Select(runColumns...).
		From(runsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.scanRun(r.conn.QueryRow(ctx, query, args...))
}

func (r *runRepository) GetLatest(ctx context.Context, profileID string) (*domain.RunRecord, error) {
	query, args, err := buildLatestRunQuery(profileID)
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.scanRun(r.conn.QueryRow(ctx, query, args...))
}

func buildLatestRunQuery(profileID string) (string, []interface{}, error) {
	builder := squirrel.
		Select(runColumns...).
		From(runsTable).
		OrderBy("started_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	if profileID != "" {
		builder = builder.Where(squirrel.Eq{"profile_id": profileID})
	}

	return builder.ToSql()
}

// scanRun retorna nil, nil quando não há registro.
func (r *runRepository) scanRun(row *sql.Row) (*domain.RunRecord, error) {
	var (
		run        domain.RunRecord
		trigger    string
		status     string
		features   pq.StringArray
		endedAt    sql.NullTime
		fatalError sql.NullString
		results    []byte
	)

	err := row.Scan(
		&run.ID,
		&run.ProfileID,
		&trigger,
		&run.DryRun,
		&features,
		&status,
		&run.StartedAt,
		&endedAt,
		&run.EntitiesEvaluated,
		&run.EntitiesModified,
		&run.Applied,
		&run.Skipped,
		&run.Failed,
		&fatalError,
		&results,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear execução: %w", err)
	}

	run.Trigger = domain.Trigger(trigger)
	run.Status = domain.RunStatus(status)
	run.Features = []string(features)
	if endedAt.Valid {
		run.EndedAt = endedAt.Time
	}
	run.FatalError = fatalError.String

	run.Results = make([]domain.ActionResult, 0)
	if len(results) > 0 {
		if err := json.Unmarshal(results, &run.Results); err != nil {
			return nil, fmt.Errorf("erro ao deserializar resultados: %w", err)
		}
	}

	return &run, nil
}
