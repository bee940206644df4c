package sqlite

import (
	"encoding/json"
	"time"

	"github.com/fastygo/planner/domain"
)

type taskModel struct {
	ID                string                 `gorm:"primaryKey;size:36"`
	Title             string                 `gorm:"not null"`
	Completed         bool                   `gorm:"not null;default:false"`
	Date              *time.Time             `gorm:"type:date;index:idx_tasks_slot,priority:1"`
	Category          string                 `gorm:"not null;index:idx_tasks_slot,priority:2"`
	IsLabel           bool                   `gorm:"not null;default:false"`
	Color             string                 `gorm:"not null"`
	Notes             string                 `gorm:"not null;default:''"`
	Recurrence        *domain.RecurrenceRule `gorm:"serializer:json"`
	RecurringParentID *string                `gorm:"size:36;index"`
	TaskOrder         int                    `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (taskModel) TableName() string { return "tasks" }

type subtaskModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	TaskID       string `gorm:"size:36;not null;index"`
	Title        string `gorm:"not null"`
	Completed    bool   `gorm:"not null;default:false"`
	SubtaskOrder int    `gorm:"not null;default:0"`
}

func (subtaskModel) TableName() string { return "subtasks" }

type eventModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	TaskID    string `gorm:"size:36;not null;index"`
	Name      string `gorm:"not null"`
	Payload   []byte
	CreatedAt time.Time `gorm:"index"`
}

func (eventModel) TableName() string { return "task_events" }

func toTaskModel(t *domain.Task) taskModel {
	m := taskModel{
		ID:                t.ID,
		Title:             t.Title,
		Completed:         t.Completed,
		Category:          t.Category,
		IsLabel:           t.IsLabel,
		Color:             t.Color,
		Notes:             t.Notes,
		RecurringParentID: t.RecurringParentID,
		TaskOrder:         t.Order,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if t.Date != nil {
		d := utcDate(*t.Date)
		m.Date = &d
	}
	if t.Recurrence != nil {
		rule := t.Recurrence.Clone()
		m.Recurrence = &rule
	}
	return m
}

func (m taskModel) toDomain() domain.Task {
	t := domain.Task{
		ID:                m.ID,
		Title:             m.Title,
		Completed:         m.Completed,
		Category:          m.Category,
		IsLabel:           m.IsLabel,
		Color:             m.Color,
		Notes:             m.Notes,
		Recurrence:        m.Recurrence,
		RecurringParentID: m.RecurringParentID,
		Order:             m.TaskOrder,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.Date != nil {
		d := utcDate(*m.Date)
		t.Date = &d
	}
	return t
}

func (m subtaskModel) toDomain() domain.Subtask {
	return domain.Subtask{
		ID:        m.ID,
		TaskID:    m.TaskID,
		Title:     m.Title,
		Completed: m.Completed,
		Order:     m.SubtaskOrder,
	}
}

func (m eventModel) toDomain() domain.Event {
	ev := domain.Event{
		ID:        m.ID,
		TaskID:    m.TaskID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
	if len(m.Payload) > 0 {
		ev.Payload = json.RawMessage(append([]byte(nil), m.Payload...))
	}
	return ev
}

func utcDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
