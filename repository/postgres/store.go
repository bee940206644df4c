package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/planner/repository"
)

type store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Postgres-backed Store. Slot and instance reads inside a
// transaction take row locks so concurrent moves on one slot serialise.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return &store{pool: pool}
}

func (s *store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, bind(tx))
	})
}

func (s *store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *store) Close() error {
	s.pool.Close()
	return nil
}

type txRepos struct {
	tasks    *taskRepository
	subtasks *subtaskRepository
	events   *eventRepository
}

func bind(q querier) *txRepos {
	return &txRepos{
		tasks:    &taskRepository{q: q},
		subtasks: &subtaskRepository{q: q},
		events:   &eventRepository{q: q},
	}
}

func (t *txRepos) Tasks() repository.TaskRepository       { return t.tasks }
func (t *txRepos) Subtasks() repository.SubtaskRepository { return t.subtasks }
func (t *txRepos) Events() repository.EventRepository     { return t.events }
