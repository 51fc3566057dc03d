package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusComplete TaskStatus = "complete"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	AssignedBy  *uint64        `gorm:"index" json:"assigned_by"`
	Completed   bool           `gorm:"not null;default:false" json:"completed"`
	DueDate     *time.Time     `json:"due_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Attachments []Attachment `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`
}

// StatusAt derives the display status of the task at a given instant. The
// status is never stored: a task is complete when it was explicitly marked
// completed or when its due date is strictly in the past. An update can
// always move a task back to pending, so neither state is terminal.
func (t *Task) StatusAt(now time.Time) TaskStatus {
	if t.Completed {
		return TaskStatusComplete
	}
	if t.DueDate != nil && t.DueDate.Before(now) {
		return TaskStatusComplete
	}
	return TaskStatusPending
}

// FormatDueDate renders a due date in the wire format, always in UTC, so a
// round trip through create and read is byte-identical regardless of the
// input's original zone.
func FormatDueDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Attachment is one filename reference on a task. Rows are ordered by ID,
// which preserves upload order; duplicate filenames are allowed.
type Attachment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	Filename  string    `gorm:"type:varchar(255);not null" json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}
