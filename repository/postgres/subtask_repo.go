package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fastygo/planner/domain"
)

const subtaskColumns = `id, task_id, title, completed, subtask_order`

type subtaskRepository struct {
	q querier
}

func (r *subtaskRepository) GetByID(ctx context.Context, id string) (*domain.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE id = $1`
	return scanSubtask(r.q.QueryRow(ctx, query, id))
}

func (r *subtaskRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE task_id = $1 ORDER BY subtask_order, id`
	rows, err := r.q.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subtask
	for rows.Next() {
		sub, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (r *subtaskRepository) Create(ctx context.Context, sub *domain.Subtask) (*domain.Subtask, error) {
	if sub == nil {
		return nil, domain.ErrInvalidPayload
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO subtasks (id, task_id, title, completed, subtask_order)
	SELECT $1, $2, $3, $4, COALESCE(MAX(subtask_order) + 1, 0)
	FROM subtasks
	WHERE task_id = $2
	RETURNING subtask_order
	`

	if err := r.q.QueryRow(ctx, query, sub.ID, sub.TaskID, sub.Title, sub.Completed).Scan(&sub.Order); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("insert subtask: %w", err)
	}
	return sub, nil
}

func (r *subtaskRepository) Update(ctx context.Context, sub *domain.Subtask) error {
	if sub == nil {
		return domain.ErrInvalidPayload
	}

	const query = `UPDATE subtasks SET title = $2, completed = $3 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, sub.ID, sub.Title, sub.Completed)
	if err != nil {
		return fmt.Errorf("update subtask: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubtaskNotFound
	}
	return nil
}

func (r *subtaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubtaskNotFound
	}
	return nil
}

func scanSubtask(row scanner) (*domain.Subtask, error) {
	var sub domain.Subtask
	if err := row.Scan(&sub.ID, &sub.TaskID, &sub.Title, &sub.Completed, &sub.Order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubtaskNotFound
		}
		return nil, err
	}
	return &sub, nil
}
