package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
)

const taskColumns = `id, title, completed, date, category, is_label, color, notes, recurrence, recurring_parent_id, task_order, created_at, updated_at`

type taskRepository struct {
	q querier
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachSubtasks(ctx, []*domain.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1::date IS NULL OR $2::date IS NULL OR date IS NULL OR date BETWEEN $1::date AND $2::date)
	ORDER BY date NULLS LAST, category, task_order, created_at, id
	`
	return r.queryTasks(ctx, query, nullDate(filter.From), nullDate(filter.To))
}

func (r *taskRepository) ListSlot(ctx context.Context, slot domain.Slot, excludeID string) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE date IS NOT DISTINCT FROM $1::date
	  AND category = $2
	  AND is_label = FALSE
	  AND id <> $3
	ORDER BY task_order, created_at, id
	FOR UPDATE
	`
	return r.queryTasks(ctx, query, nullDate(slot.Date), slot.Category, excludeID)
}

func (r *taskRepository) ListInstances(ctx context.Context, parentID string) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE recurring_parent_id = $1
	ORDER BY date, task_order, id
	FOR UPDATE
	`
	return r.queryTasks(ctx, query, parentID)
}

func (r *taskRepository) ListStale(ctx context.Context, today time.Time) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE date < $1::date
	  AND completed = FALSE
	  AND is_label = FALSE
	  AND recurring_parent_id IS NULL
	ORDER BY date, task_order, id
	FOR UPDATE
	`
	return r.queryTasks(ctx, query, today)
}

func (r *taskRepository) NextOrder(ctx context.Context, slot domain.Slot) (int, error) {
	const query = `
	SELECT COALESCE(MAX(task_order) + 1, 0)
	FROM tasks
	WHERE date IS NOT DISTINCT FROM $1::date AND category = $2
	`
	var next int
	if err := r.q.QueryRow(ctx, query, nullDate(slot.Date), slot.Category).Scan(&next); err != nil {
		return 0, fmt.Errorf("next order: %w", err)
	}
	return next, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, completed, date, category, is_label, color, notes, recurrence, recurring_parent_id, task_order)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at
	`

	if err := r.q.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Completed,
		nullDate(task.Date),
		task.Category,
		task.IsLabel,
		task.Color,
		task.Notes,
		marshalRule(task.Recurrence),
		task.RecurringParentID,
		task.Order,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		completed = $3,
		date = $4,
		category = $5,
		is_label = $6,
		color = $7,
		notes = $8,
		recurrence = $9,
		task_order = $10,
		updated_at = NOW()
	WHERE id = $1
	RETURNING created_at, updated_at
	`

	if err := r.q.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Completed,
		nullDate(task.Date),
		task.Category,
		task.IsLabel,
		task.Color,
		task.Notes,
		marshalRule(task.Recurrence),
		task.Order,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]domain.Task, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ptrs := make([]*domain.Task, len(tasks))
	for i := range tasks {
		ptrs[i] = &tasks[i]
	}
	if err := r.attachSubtasks(ctx, ptrs); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) attachSubtasks(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, len(tasks))
	byID := make(map[string]*domain.Task, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE task_id = ANY($1) ORDER BY subtask_order, id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query subtasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sub, err := scanSubtask(rows)
		if err != nil {
			return err
		}
		if t, ok := byID[sub.TaskID]; ok {
			t.Subtasks = append(t.Subtasks, *sub)
		}
	}
	return rows.Err()
}

func scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	var (
		date       *time.Time
		recurrence []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Completed,
		&date,
		&task.Category,
		&task.IsLabel,
		&task.Color,
		&task.Notes,
		&recurrence,
		&task.RecurringParentID,
		&task.Order,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if date != nil {
		d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		task.Date = &d
	}
	task.Recurrence = unmarshalRule(recurrence)
	return &task, nil
}
