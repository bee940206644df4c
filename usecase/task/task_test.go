package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/repository/memory"
	"github.com/fastygo/planner/usecase/recurrence"
)

func date(d int) *time.Time {
	t := calendar.Date(2024, time.March, d)
	return &t
}

func TestCreateTaskDefaultsAndOrder(t *testing.T) {
	uc := New(memory.New(), 4, nil)
	ctx := context.Background()

	first, err := uc.CreateTask(ctx, "Buy milk", date(1), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Category != domain.DefaultCategory || first.Color != domain.DefaultColor {
		t.Fatalf("defaults not applied: %+v", first)
	}
	second, _ := uc.CreateTask(ctx, "Walk dog", date(1), domain.DefaultCategory)
	if first.Order != 0 || second.Order != 1 {
		t.Fatalf("expected orders 0 and 1, got %d and %d", first.Order, second.Order)
	}

	if _, err := uc.CreateTask(ctx, "   ", nil, ""); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("expected invalid payload for blank title, got %v", err)
	}

	events, _ := uc.Events(ctx, first.ID, 0)
	if len(events) != 1 || events[0].Name != domain.EventTaskCreated {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestUpdateTaskDatePatch(t *testing.T) {
	uc := New(memory.New(), 4, nil)
	ctx := context.Background()
	created, _ := uc.CreateTask(ctx, "Report", date(4), "work")

	title := "Quarterly report"
	updated, err := uc.UpdateTask(ctx, created.ID, Patch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Date == nil {
		t.Fatalf("untouched date must survive a title patch: %+v", updated)
	}

	updated, err = uc.UpdateTask(ctx, created.ID, Patch{DateSet: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Date != nil {
		t.Fatalf("expected someday task, got %v", updated.Date)
	}

	if _, err := uc.UpdateTask(ctx, "missing", Patch{}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateRecurringParentDateRegenerates(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	uc := New(store, 4, nil)
	rec := recurrence.New(store, nil, 4, nil)

	parent, _ := uc.CreateTask(ctx, "Standup", date(1), "work")
	count := 2
	if _, _, err := rec.Set(ctx, parent.ID, domain.RecurrenceRule{Type: domain.RecurrenceDaily, Count: &count}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, err := uc.UpdateTask(ctx, parent.ID, Patch{DateSet: true, Date: date(20)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	tasks, _ := uc.ListTasks(ctx, repository.TaskFilter{})
	var dates []string
	for _, task := range tasks {
		if task.IsInstance() {
			dates = append(dates, calendar.Format(*task.Date))
		}
	}
	if len(dates) != 2 || dates[0] != "2024-03-21" || dates[1] != "2024-03-22" {
		t.Fatalf("unexpected instance dates %v", dates)
	}
}

func TestDeleteTaskAndFuture(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	uc := New(store, 4, nil)
	rec := recurrence.New(store, nil, 4, nil)

	parent, _ := uc.CreateTask(ctx, "Gym", date(1), "personal")
	count := 4
	_, created, err := rec.Set(ctx, parent.ID, domain.RecurrenceRule{Type: domain.RecurrenceDaily, Count: &count})
	if err != nil || len(created) != 4 {
		t.Fatalf("set: %v, %d instances", err, len(created))
	}

	var target string
	for _, inst := range created {
		if calendar.Format(*inst.Date) == "2024-03-04" {
			target = inst.ID
		}
	}
	if err := uc.DeleteTaskAndFuture(ctx, target); err != nil {
		t.Fatalf("delete and future: %v", err)
	}

	tasks, _ := uc.ListTasks(ctx, repository.TaskFilter{})
	var left []string
	for _, task := range tasks {
		if task.IsInstance() {
			left = append(left, calendar.Format(*task.Date))
		}
	}
	if len(left) != 2 || left[0] != "2024-03-02" || left[1] != "2024-03-03" {
		t.Fatalf("unexpected remaining instances %v", left)
	}
	if _, err := uc.GetTask(ctx, parent.ID); err != nil {
		t.Fatalf("parent must survive: %v", err)
	}

	if err := uc.DeleteTask(ctx, parent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tasks, _ = uc.ListTasks(ctx, repository.TaskFilter{})
	if len(tasks) != 0 {
		t.Fatalf("deleting the parent must remove its instances, %d left", len(tasks))
	}
}

func TestSubtasks(t *testing.T) {
	uc := New(memory.New(), 4, nil)
	ctx := context.Background()
	task, _ := uc.CreateTask(ctx, "Pack", nil, "")

	a, err := uc.AddSubtask(ctx, task.ID, "Socks")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, _ := uc.AddSubtask(ctx, task.ID, "Charger")
	if a.Order != 0 || b.Order != 1 {
		t.Fatalf("unexpected subtask orders %d, %d", a.Order, b.Order)
	}

	done := true
	updated, err := uc.UpdateSubtask(ctx, a.ID, SubtaskPatch{Completed: &done})
	if err != nil || !updated.Completed {
		t.Fatalf("update subtask: %+v, %v", updated, err)
	}

	if err := uc.DeleteSubtask(ctx, b.ID); err != nil {
		t.Fatalf("delete subtask: %v", err)
	}
	got, _ := uc.GetTask(ctx, task.ID)
	if len(got.Subtasks) != 1 || got.Subtasks[0].ID != a.ID {
		t.Fatalf("unexpected subtasks %+v", got.Subtasks)
	}

	if _, err := uc.AddSubtask(ctx, "missing", "x"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := uc.DeleteSubtask(ctx, "missing"); !errors.Is(err, domain.ErrSubtaskNotFound) {
		t.Fatalf("expected subtask not found, got %v", err)
	}
}
