package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
	"github.com/fastygo/planner/repository/memory"
)

type fakeRunner struct {
	today time.Time
	calls int
	err   error
}

func (f *fakeRunner) Today() time.Time { return f.today }

func (f *fakeRunner) Run(_ context.Context, _ time.Time) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func TestRunOnceClaimsEachDayOnce(t *testing.T) {
	runner := &fakeRunner{today: calendar.Date(2024, time.March, 10)}
	s := NewRolloverScheduler(runner, memory.NewMarkerRepository(), time.UTC, "0 5 0 * * *", 0, nil)

	count, err := s.RunOnce(context.Background())
	if err != nil || count != 2 {
		t.Fatalf("first run = %d, %v", count, err)
	}
	count, err = s.RunOnce(context.Background())
	if err != nil || count != 0 {
		t.Fatalf("second run = %d, %v", count, err)
	}
	if runner.calls != 1 {
		t.Fatalf("expected runner called once, got %d", runner.calls)
	}

	runner.today = calendar.Date(2024, time.March, 11)
	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("next day run: %v", err)
	}
	if runner.calls != 2 {
		t.Fatalf("expected a run for the next day, got %d calls", runner.calls)
	}
}

func TestRunOnceReleasesMarkerOnFailure(t *testing.T) {
	runner := &fakeRunner{today: calendar.Date(2024, time.March, 10), err: errors.New("boom")}
	s := NewRolloverScheduler(runner, memory.NewMarkerRepository(), time.UTC, "0 5 0 * * *", 0, nil)

	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	runner.err = nil
	if count, err := s.RunOnce(context.Background()); err != nil || count != 2 {
		t.Fatalf("retry after failure = %d, %v", count, err)
	}
}

func TestRunOnceKeepsMarkerWhenQueued(t *testing.T) {
	runner := &fakeRunner{today: calendar.Date(2024, time.March, 10), err: domain.ErrQueued}
	s := NewRolloverScheduler(runner, memory.NewMarkerRepository(), time.UTC, "0 5 0 * * *", 0, nil)

	if _, err := s.RunOnce(context.Background()); !errors.Is(err, domain.ErrQueued) {
		t.Fatalf("expected queued, got %v", err)
	}
	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("queued run must keep the day's claim, got %d calls", runner.calls)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	runner := &fakeRunner{today: calendar.Date(2024, time.March, 10)}
	s := NewRolloverScheduler(runner, nil, time.UTC, "not a schedule", 0, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected invalid schedule error")
	}
	if runner.calls != 0 {
		t.Fatal("runner must not run when the schedule is invalid")
	}
}
