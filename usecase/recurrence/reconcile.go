package recurrence

import (
	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
)

// Plan lists the instance mutations that bring a parent's generated
// instances in line with its rule.
type Plan struct {
	Delete []domain.Task
	Create []domain.Task
}

// Reconcile partitions the existing instances of parent: incomplete ones are
// always deleted, completed ones are kept and their dates are never generated
// again. With a nil rule, or a parent without a date, nothing is created.
func Reconcile(parent domain.Task, rule *domain.RecurrenceRule, existing []domain.Task, horizonWeeks int) Plan {
	var plan Plan
	present := make(map[string]struct{})

	for _, inst := range existing {
		if inst.Completed {
			if inst.Date != nil {
				present[calendar.Format(*inst.Date)] = struct{}{}
			}
			continue
		}
		plan.Delete = append(plan.Delete, inst)
	}

	if rule == nil || parent.Date == nil {
		return plan
	}

	parentID := parent.ID
	for _, d := range Expand(*parent.Date, *rule, horizonWeeks) {
		if _, ok := present[calendar.Format(d)]; ok {
			continue
		}
		date := d
		pid := parentID
		plan.Create = append(plan.Create, domain.Task{
			Title:             parent.Title,
			Date:              &date,
			Category:          parent.Category,
			Color:             parent.Color,
			Notes:             parent.Notes,
			RecurringParentID: &pid,
			Order:             0,
		})
	}
	return plan
}
