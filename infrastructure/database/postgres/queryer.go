package postgres

import (
	"context"
	"database/sql"
)

// Queryer é satisfeito por Connection e permite trocar a conexão por um fake nos testes.
type Queryer interface {
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var _ Conn = (*Connection)(nil)
