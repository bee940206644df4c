package recurrence

import (
	"testing"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := calendar.Date(y, m, d)
	return &t
}

func strPtr(s string) *string { return &s }

func newParent() domain.Task {
	return domain.Task{
		ID:       "parent",
		Title:    "Water plants",
		Date:     datePtr(2024, time.March, 1),
		Category: "home",
		Color:    "green",
		Notes:    "balcony too",
		Order:    4,
	}
}

func instance(id string, date *time.Time, completed bool) domain.Task {
	return domain.Task{
		ID:                id,
		Title:             "Water plants",
		Date:              date,
		Category:          "home",
		Completed:         completed,
		RecurringParentID: strPtr("parent"),
	}
}

func TestReconcileKeepsCompletedAndSkipsTheirDates(t *testing.T) {
	parent := newParent()
	rule := &domain.RecurrenceRule{Type: domain.RecurrenceDaily, Count: intPtr(3)}
	existing := []domain.Task{
		instance("done", datePtr(2024, time.March, 2), true),
		instance("stale", datePtr(2024, time.March, 5), false),
	}

	plan := Reconcile(parent, rule, existing, 4)

	if len(plan.Delete) != 1 || plan.Delete[0].ID != "stale" {
		t.Fatalf("expected only the incomplete instance deleted, got %+v", plan.Delete)
	}
	var created []string
	for _, c := range plan.Create {
		created = append(created, calendar.Format(*c.Date))
	}
	if len(created) != 2 || created[0] != "2024-03-03" || created[1] != "2024-03-04" {
		t.Fatalf("unexpected creations %v", created)
	}
}

func TestReconcileCopiesParentFields(t *testing.T) {
	parent := newParent()
	plan := Reconcile(parent, &domain.RecurrenceRule{Type: domain.RecurrenceWeekly, Count: intPtr(1)}, nil, 4)
	if len(plan.Create) != 1 {
		t.Fatalf("expected one instance, got %d", len(plan.Create))
	}
	inst := plan.Create[0]
	if inst.Title != parent.Title || inst.Category != parent.Category || inst.Color != parent.Color || inst.Notes != parent.Notes {
		t.Fatalf("instance did not copy parent fields: %+v", inst)
	}
	if inst.Order != 0 {
		t.Fatalf("instance order must reset to 0, got %d", inst.Order)
	}
	if inst.RecurringParentID == nil || *inst.RecurringParentID != parent.ID {
		t.Fatalf("instance must reference its parent, got %v", inst.RecurringParentID)
	}
	if inst.Recurrence != nil {
		t.Fatal("instances never carry a rule")
	}
}

func TestReconcileWithoutRuleOnlyDeletes(t *testing.T) {
	existing := []domain.Task{
		instance("a", datePtr(2024, time.March, 2), false),
		instance("b", datePtr(2024, time.March, 3), true),
		instance("c", datePtr(2024, time.March, 4), false),
	}
	plan := Reconcile(newParent(), nil, existing, 4)
	if len(plan.Create) != 0 {
		t.Fatalf("expected no creations, got %d", len(plan.Create))
	}
	if len(plan.Delete) != 2 {
		t.Fatalf("expected 2 deletions, got %d", len(plan.Delete))
	}
	for _, d := range plan.Delete {
		if d.Completed {
			t.Fatal("completed instance scheduled for deletion")
		}
	}
}

func TestReconcileDatelessParentCreatesNothing(t *testing.T) {
	parent := newParent()
	parent.Date = nil
	plan := Reconcile(parent, &domain.RecurrenceRule{Type: domain.RecurrenceDaily}, nil, 4)
	if len(plan.Create) != 0 || len(plan.Delete) != 0 {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

func TestReconcileNoDuplicateOnCompletedDate(t *testing.T) {
	parent := newParent()
	rule := &domain.RecurrenceRule{Type: domain.RecurrenceWeekly}
	existing := []domain.Task{instance("done", datePtr(2024, time.March, 8), true)}

	plan := Reconcile(parent, rule, existing, 4)
	for _, c := range plan.Create {
		if calendar.Format(*c.Date) == "2024-03-08" {
			t.Fatal("completed date was generated again")
		}
	}
	if len(plan.Create) != 3 {
		t.Fatalf("expected 3 creations, got %d", len(plan.Create))
	}
}
