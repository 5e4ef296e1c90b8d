package postgres

import (
	"context"
	"database/sql"
)

// Queryer é o mínimo que os repositórios precisam para consultar o banco
type Queryer interface {
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row
}
