package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
)

func day(d int) *time.Time {
	t := time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFailedTransactionRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Tasks().Create(ctx, &domain.Task{ID: "a", Category: "work"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	_ = s.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Tasks().GetByID(ctx, "a"); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("rolled back task still visible: %v", err)
		}
		return nil
	})
}

func TestDeleteCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	parent := "p"

	err := s.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		for _, task := range []*domain.Task{
			{ID: "p", Date: day(1), Category: "work"},
			{ID: "i1", Date: day(2), Category: "work", RecurringParentID: &parent},
			{ID: "other", Date: day(2), Category: "work"},
		} {
			if _, err := tx.Tasks().Create(ctx, task); err != nil {
				return err
			}
		}
		_, err := tx.Subtasks().Create(ctx, &domain.Subtask{ID: "s1", TaskID: "p", Title: "step"})
		if err != nil {
			return err
		}
		return tx.Tasks().Delete(ctx, "p")
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	_ = s.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		all, _ := tx.Tasks().List(ctx, repository.TaskFilter{})
		if len(all) != 1 || all[0].ID != "other" {
			t.Errorf("unexpected survivors %+v", all)
		}
		if _, err := tx.Subtasks().GetByID(ctx, "s1"); !errors.Is(err, domain.ErrSubtaskNotFound) {
			t.Errorf("subtask survived delete: %v", err)
		}
		return nil
	})
}

func TestListSlotAndNextOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	slot := domain.Slot{Date: day(1), Category: "work"}

	_ = s.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		for _, task := range []*domain.Task{
			{ID: "b", Date: day(1), Category: "work", Order: 1},
			{ID: "a", Date: day(1), Category: "work", Order: 0},
			{ID: "lbl", Date: day(1), Category: "work", Order: 4, IsLabel: true},
			{ID: "x", Date: day(1), Category: "personal", Order: 9},
			{ID: "s", Category: "work", Order: 7},
		} {
			_, _ = tx.Tasks().Create(ctx, task)
		}
		return nil
	})

	_ = s.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		members, _ := tx.Tasks().ListSlot(ctx, slot, "b")
		if len(members) != 1 || members[0].ID != "a" {
			t.Errorf("unexpected slot members %+v", members)
		}
		next, _ := tx.Tasks().NextOrder(ctx, slot)
		if next != 5 {
			t.Errorf("expected next order 5, got %d", next)
		}
		empty, _ := tx.Tasks().NextOrder(ctx, domain.Slot{Date: day(9), Category: "work"})
		if empty != 0 {
			t.Errorf("expected 0 for empty slot, got %d", empty)
		}
		someday, _ := tx.Tasks().ListSlot(ctx, domain.Slot{Category: "work"}, "")
		if len(someday) != 1 || someday[0].ID != "s" {
			t.Errorf("unexpected someday slot %+v", someday)
		}
		return nil
	})
}

func TestListRangeKeepsSomeday(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		for _, task := range []*domain.Task{
			{ID: "in", Date: day(5), Category: "work"},
			{ID: "out", Date: day(20), Category: "work"},
			{ID: "someday", Category: "work"},
		} {
			_, _ = tx.Tasks().Create(ctx, task)
		}
		return nil
	})

	_ = s.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		got, _ := tx.Tasks().List(ctx, repository.TaskFilter{From: day(1), To: day(7)})
		if len(got) != 2 || got[0].ID != "in" || got[1].ID != "someday" {
			t.Errorf("unexpected range result %+v", got)
		}
		return nil
	})
}

func TestMarkerClaimOnce(t *testing.T) {
	m := NewMarkerRepository()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if ok, _ := m.Claim(ctx, "rollover:2024-03-01", time.Hour); !ok {
		t.Fatal("first claim must succeed")
	}
	if ok, _ := m.Claim(ctx, "rollover:2024-03-01", time.Hour); ok {
		t.Fatal("second claim must fail while the marker is live")
	}
	now = now.Add(2 * time.Hour)
	if ok, _ := m.Claim(ctx, "rollover:2024-03-01", time.Hour); !ok {
		t.Fatal("claim must succeed after expiry")
	}
	_ = m.Release(ctx, "rollover:2024-03-01")
	if ok, _ := m.Claim(ctx, "rollover:2024-03-01", time.Hour); !ok {
		t.Fatal("claim must succeed after release")
	}
}
