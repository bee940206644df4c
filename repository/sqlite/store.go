package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
)

type store struct {
	db *gorm.DB
}

// NewStore wraps an opened database as a repository.Store.
func NewStore(db *gorm.DB) repository.Store {
	return &store{db: db}
}

func (s *store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &txRepos{db: tx})
	})
}

func (s *store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type txRepos struct {
	db *gorm.DB
}

func (t *txRepos) Tasks() repository.TaskRepository       { return &taskRepository{db: t.db} }
func (t *txRepos) Subtasks() repository.SubtaskRepository { return &subtaskRepository{db: t.db} }
func (t *txRepos) Events() repository.EventRepository     { return &eventRepository{db: t.db} }

type taskRepository struct {
	db *gorm.DB
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var m taskModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	tasks, err := r.withSubtasks(ctx, []taskModel{m})
	if err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	q := r.db.WithContext(ctx).Model(&taskModel{})
	if filter.From != nil && filter.To != nil {
		q = q.Where("date IS NULL OR (date >= ? AND date <= ?)", utcDate(*filter.From), utcDate(*filter.To))
	}
	var models []taskModel
	if err := q.Order("date IS NULL, date, category, task_order, created_at, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return r.withSubtasks(ctx, models)
}

func (r *taskRepository) ListSlot(ctx context.Context, slot domain.Slot, excludeID string) ([]domain.Task, error) {
	q := whereSlot(r.db.WithContext(ctx).Model(&taskModel{}), slot).
		Where("is_label = ? AND id <> ?", false, excludeID)
	var models []taskModel
	if err := q.Order("task_order, created_at, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list slot: %w", err)
	}
	return r.withSubtasks(ctx, models)
}

func (r *taskRepository) ListInstances(ctx context.Context, parentID string) ([]domain.Task, error) {
	var models []taskModel
	err := r.db.WithContext(ctx).
		Where("recurring_parent_id = ?", parentID).
		Order("date, task_order, id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	return r.withSubtasks(ctx, models)
}

func (r *taskRepository) ListStale(ctx context.Context, today time.Time) ([]domain.Task, error) {
	var models []taskModel
	err := r.db.WithContext(ctx).
		Where("date IS NOT NULL AND date < ?", utcDate(today)).
		Where("completed = ? AND is_label = ? AND recurring_parent_id IS NULL", false, false).
		Order("date, task_order, id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list stale: %w", err)
	}
	return r.withSubtasks(ctx, models)
}

func (r *taskRepository) NextOrder(ctx context.Context, slot domain.Slot) (int, error) {
	var next int
	err := whereSlot(r.db.WithContext(ctx).Model(&taskModel{}), slot).
		Select("COALESCE(MAX(task_order) + 1, 0)").
		Scan(&next).Error
	if err != nil {
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
	if task.RecurringParentID != nil {
		var count int64
		if err := r.db.WithContext(ctx).Model(&taskModel{}).Where("id = ?", *task.RecurringParentID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check parent: %w", err)
		}
		if count == 0 {
			return nil, domain.ErrTaskNotFound
		}
	}

	m := toTaskModel(task)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	task.CreatedAt = m.CreatedAt
	task.UpdatedAt = m.UpdatedAt
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	m := toTaskModel(task)
	m.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&taskModel{}).
		Where("id = ?", task.ID).
		Select("title", "completed", "date", "category", "is_label", "color", "notes", "recurrence", "task_order", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)

	var instanceIDs []string
	if err := db.Model(&taskModel{}).Where("recurring_parent_id = ?", id).Pluck("id", &instanceIDs).Error; err != nil {
		return fmt.Errorf("list instances: %w", err)
	}
	ids := append([]string{id}, instanceIDs...)

	if err := db.Where("task_id IN ?", ids).Delete(&subtaskModel{}).Error; err != nil {
		return fmt.Errorf("delete subtasks: %w", err)
	}
	if len(instanceIDs) > 0 {
		if err := db.Where("id IN ?", instanceIDs).Delete(&taskModel{}).Error; err != nil {
			return fmt.Errorf("delete instances: %w", err)
		}
	}
	res := db.Where("id = ?", id).Delete(&taskModel{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) withSubtasks(ctx context.Context, models []taskModel) ([]domain.Task, error) {
	if len(models) == 0 {
		return nil, nil
	}
	tasks := make([]domain.Task, len(models))
	ids := make([]string, len(models))
	index := make(map[string]int, len(models))
	for i, m := range models {
		tasks[i] = m.toDomain()
		ids[i] = m.ID
		index[m.ID] = i
	}

	var subs []subtaskModel
	err := r.db.WithContext(ctx).
		Where("task_id IN ?", ids).
		Order("subtask_order, id").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("query subtasks: %w", err)
	}
	for _, s := range subs {
		if i, ok := index[s.TaskID]; ok {
			tasks[i].Subtasks = append(tasks[i].Subtasks, s.toDomain())
		}
	}
	return tasks, nil
}

func whereSlot(q *gorm.DB, slot domain.Slot) *gorm.DB {
	q = q.Where("category = ?", slot.Category)
	if slot.Date == nil {
		return q.Where("date IS NULL")
	}
	return q.Where("date = ?", utcDate(*slot.Date))
}

type subtaskRepository struct {
	db *gorm.DB
}

func (r *subtaskRepository) GetByID(ctx context.Context, id string) (*domain.Subtask, error) {
	var m subtaskModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("get subtask: %w", err)
	}
	sub := m.toDomain()
	return &sub, nil
}

func (r *subtaskRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Subtask, error) {
	var models []subtaskModel
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("subtask_order, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	subs := make([]domain.Subtask, 0, len(models))
	for _, m := range models {
		subs = append(subs, m.toDomain())
	}
	return subs, nil
}

func (r *subtaskRepository) Create(ctx context.Context, sub *domain.Subtask) (*domain.Subtask, error) {
	if sub == nil {
		return nil, domain.ErrInvalidPayload
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&taskModel{}).Where("id = ?", sub.TaskID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check task: %w", err)
	}
	if count == 0 {
		return nil, domain.ErrTaskNotFound
	}

	var next int
	if err := db.Model(&subtaskModel{}).Where("task_id = ?", sub.TaskID).Select("COALESCE(MAX(subtask_order) + 1, 0)").Scan(&next).Error; err != nil {
		return nil, fmt.Errorf("next subtask order: %w", err)
	}
	sub.Order = next

	m := subtaskModel{
		ID:           sub.ID,
		TaskID:       sub.TaskID,
		Title:        sub.Title,
		Completed:    sub.Completed,
		SubtaskOrder: sub.Order,
	}
	if err := db.Create(&m).Error; err != nil {
		return nil, fmt.Errorf("insert subtask: %w", err)
	}
	return sub, nil
}

func (r *subtaskRepository) Update(ctx context.Context, sub *domain.Subtask) error {
	if sub == nil {
		return domain.ErrInvalidPayload
	}
	res := r.db.WithContext(ctx).Model(&subtaskModel{}).
		Where("id = ?", sub.ID).
		Select("title", "completed").
		Updates(&subtaskModel{Title: sub.Title, Completed: sub.Completed})
	if res.Error != nil {
		return fmt.Errorf("update subtask: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSubtaskNotFound
	}
	return nil
}

func (r *subtaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&subtaskModel{})
	if res.Error != nil {
		return fmt.Errorf("delete subtask: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSubtaskNotFound
	}
	return nil
}

type eventRepository struct {
	db *gorm.DB
}

func (r *eventRepository) Append(ctx context.Context, event domain.Event) error {
	m := eventModel{
		ID:        event.ID,
		TaskID:    event.TaskID,
		Name:      event.Name,
		CreatedAt: event.CreatedAt,
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if len(event.Payload) > 0 {
		m.Payload = []byte(event.Payload)
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (r *eventRepository) ListByTask(ctx context.Context, taskID string, limit int) ([]domain.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var models []eventModel
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC, id").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]domain.Event, 0, len(models))
	for _, m := range models {
		events = append(events, m.toDomain())
	}
	return events, nil
}
