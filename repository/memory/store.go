// Package memory provides an in-process Store. Transactions are serialised
// behind a mutex and applied copy-on-write, so a failed transaction leaves no
// trace.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
)

type taskRecord struct {
	task domain.Task
	seq  int64
}

type subtaskRecord struct {
	subtask domain.Subtask
	seq     int64
}

type state struct {
	tasks    map[string]taskRecord
	subtasks map[string]subtaskRecord
	events   []domain.Event
	seq      int64
}

func (s *state) clone() *state {
	out := &state{
		tasks:    make(map[string]taskRecord, len(s.tasks)),
		subtasks: make(map[string]subtaskRecord, len(s.subtasks)),
		events:   append([]domain.Event(nil), s.events...),
		seq:      s.seq,
	}
	for id, rec := range s.tasks {
		out.tasks[id] = taskRecord{task: rec.task.Clone(), seq: rec.seq}
	}
	for id, rec := range s.subtasks {
		out.subtasks[id] = rec
	}
	return out
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

// Store is a repository.Store held entirely in memory.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		state: &state{
			tasks:    make(map[string]taskRecord),
			subtasks: make(map[string]subtaskRecord),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(ctx, &tx{state: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

type tx struct {
	state *state
	now   func() time.Time
}

func (t *tx) Tasks() repository.TaskRepository       { return taskRepository{t} }
func (t *tx) Subtasks() repository.SubtaskRepository { return subtaskRepository{t} }
func (t *tx) Events() repository.EventRepository     { return eventRepository{t} }

type taskRepository struct{ *tx }

func (r taskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	rec, ok := r.state.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task := r.withSubtasks(rec.task)
	return &task, nil
}

func (r taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	ranged := filter.From != nil && filter.To != nil
	var recs []taskRecord
	for _, rec := range r.state.tasks {
		if ranged && rec.task.Date != nil {
			d := *rec.task.Date
			if d.Before(*filter.From) || d.After(*filter.To) {
				continue
			}
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i].task, recs[j].task
		switch {
		case a.Date == nil && b.Date != nil:
			return false
		case a.Date != nil && b.Date == nil:
			return true
		case a.Date != nil && !a.Date.Equal(*b.Date):
			return a.Date.Before(*b.Date)
		case a.Category != b.Category:
			return a.Category < b.Category
		case a.Order != b.Order:
			return a.Order < b.Order
		}
		return recs[i].seq < recs[j].seq
	})
	return r.collect(recs), nil
}

func (r taskRepository) ListSlot(_ context.Context, slot domain.Slot, excludeID string) ([]domain.Task, error) {
	var recs []taskRecord
	for id, rec := range r.state.tasks {
		if id == excludeID || !rec.task.InSlot(slot) {
			continue
		}
		recs = append(recs, rec)
	}
	sortByOrder(recs)
	return r.collect(recs), nil
}

func (r taskRepository) ListInstances(_ context.Context, parentID string) ([]domain.Task, error) {
	var recs []taskRecord
	for _, rec := range r.state.tasks {
		if rec.task.RecurringParentID != nil && *rec.task.RecurringParentID == parentID {
			recs = append(recs, rec)
		}
	}
	sortByOrder(recs)
	return r.collect(recs), nil
}

func (r taskRepository) ListStale(_ context.Context, today time.Time) ([]domain.Task, error) {
	var recs []taskRecord
	for _, rec := range r.state.tasks {
		t := rec.task
		if t.Date == nil || !t.Date.Before(today) || t.Completed || t.IsLabel || t.RecurringParentID != nil {
			continue
		}
		recs = append(recs, rec)
	}
	sortByOrder(recs)
	return r.collect(recs), nil
}

func (r taskRepository) NextOrder(_ context.Context, slot domain.Slot) (int, error) {
	next := 0
	for _, rec := range r.state.tasks {
		t := rec.task
		if t.Category != slot.Category || !domain.SameDate(t.Date, slot.Date) {
			continue
		}
		if t.Order+1 > next {
			next = t.Order + 1
		}
	}
	return next, nil
}

func (r taskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := r.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	stored := task.Clone()
	stored.Subtasks = nil
	r.state.tasks[task.ID] = taskRecord{task: stored, seq: r.state.next()}
	return task, nil
}

func (r taskRepository) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	rec, ok := r.state.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.CreatedAt = rec.task.CreatedAt
	task.UpdatedAt = r.now()

	stored := task.Clone()
	stored.Subtasks = nil
	r.state.tasks[task.ID] = taskRecord{task: stored, seq: rec.seq}
	return nil
}

func (r taskRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.state.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	r.deleteCascade(id)
	return nil
}

func (r taskRepository) deleteCascade(id string) {
	delete(r.state.tasks, id)
	for subID, rec := range r.state.subtasks {
		if rec.subtask.TaskID == id {
			delete(r.state.subtasks, subID)
		}
	}
	for childID, rec := range r.state.tasks {
		if rec.task.RecurringParentID != nil && *rec.task.RecurringParentID == id {
			r.deleteCascade(childID)
		}
	}
}

func (r taskRepository) withSubtasks(task domain.Task) domain.Task {
	out := task.Clone()
	out.Subtasks = subtaskRepository{r.tx}.list(task.ID)
	return out
}

func (r taskRepository) collect(recs []taskRecord) []domain.Task {
	tasks := make([]domain.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, r.withSubtasks(rec.task))
	}
	return tasks
}

func sortByOrder(recs []taskRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].task.Order != recs[j].task.Order {
			return recs[i].task.Order < recs[j].task.Order
		}
		return recs[i].seq < recs[j].seq
	})
}

type subtaskRepository struct{ *tx }

func (r subtaskRepository) GetByID(_ context.Context, id string) (*domain.Subtask, error) {
	rec, ok := r.state.subtasks[id]
	if !ok {
		return nil, domain.ErrSubtaskNotFound
	}
	sub := rec.subtask
	return &sub, nil
}

func (r subtaskRepository) ListByTask(_ context.Context, taskID string) ([]domain.Subtask, error) {
	return r.list(taskID), nil
}

func (r subtaskRepository) Create(_ context.Context, subtask *domain.Subtask) (*domain.Subtask, error) {
	if subtask == nil {
		return nil, domain.ErrInvalidPayload
	}
	if _, ok := r.state.tasks[subtask.TaskID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	if subtask.ID == "" {
		subtask.ID = uuid.NewString()
	}
	order := 0
	for _, rec := range r.state.subtasks {
		if rec.subtask.TaskID == subtask.TaskID && rec.subtask.Order+1 > order {
			order = rec.subtask.Order + 1
		}
	}
	subtask.Order = order
	r.state.subtasks[subtask.ID] = subtaskRecord{subtask: *subtask, seq: r.state.next()}
	return subtask, nil
}

func (r subtaskRepository) Update(_ context.Context, subtask *domain.Subtask) error {
	if subtask == nil {
		return domain.ErrInvalidPayload
	}
	rec, ok := r.state.subtasks[subtask.ID]
	if !ok {
		return domain.ErrSubtaskNotFound
	}
	rec.subtask = *subtask
	r.state.subtasks[subtask.ID] = rec
	return nil
}

func (r subtaskRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.state.subtasks[id]; !ok {
		return domain.ErrSubtaskNotFound
	}
	delete(r.state.subtasks, id)
	return nil
}

func (r subtaskRepository) list(taskID string) []domain.Subtask {
	var recs []subtaskRecord
	for _, rec := range r.state.subtasks {
		if rec.subtask.TaskID == taskID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].subtask.Order != recs[j].subtask.Order {
			return recs[i].subtask.Order < recs[j].subtask.Order
		}
		return recs[i].seq < recs[j].seq
	})
	out := make([]domain.Subtask, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.subtask)
	}
	return out
}

type eventRepository struct{ *tx }

func (r eventRepository) Append(_ context.Context, event domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}
	r.state.events = append(r.state.events, event)
	return nil
}

func (r eventRepository) ListByTask(_ context.Context, taskID string, limit int) ([]domain.Event, error) {
	var out []domain.Event
	for i := len(r.state.events) - 1; i >= 0; i-- {
		if r.state.events[i].TaskID != taskID {
			continue
		}
		out = append(out, r.state.events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

var _ repository.Store = (*Store)(nil)
