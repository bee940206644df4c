package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/planner/domain"
)

const foreignKeyViolation = "23503"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func marshalRule(rule *domain.RecurrenceRule) []byte {
	if rule == nil {
		return nil
	}
	b, err := json.Marshal(rule)
	if err != nil {
		return nil
	}
	return b
}

func unmarshalRule(raw []byte) *domain.RecurrenceRule {
	if len(raw) == 0 {
		return nil
	}
	var rule domain.RecurrenceRule
	if err := json.Unmarshal(raw, &rule); err != nil {
		return nil
	}
	return &rule
}

// nullDate converts an optional date to a query argument.
func nullDate(d *time.Time) interface{} {
	if d == nil {
		return nil
	}
	return *d
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
