package dto

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
)

// TaskDTO is the wire shape of a task. The id is rendered as a string under
// `_id` and the status is the derived value at response time, never a stored
// field.
type TaskDTO struct {
	ID          string            `json:"_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	Completed   bool              `json:"completed"`
	OwnerID     uint64            `json:"user_id"`
	AssignedBy  *uint64           `json:"assigned_by,omitempty"`
	DueDate     *string           `json:"due_date,omitempty"`
	Attachments []string          `json:"attachments"`
	CreatedAt   time.Time         `json:"created_at"`
}

// DueInfoDTO is the `{due_date, description}` payload of the due endpoint.
type DueInfoDTO struct {
	DueDate     *string `json:"due_date"`
	Description string  `json:"description"`
}

// LogDTO is one audit entry without its internal storage identifier.
type LogDTO struct {
	Action    models.LogAction       `json:"action"`
	UpdatedBy uint64                 `json:"updated_by"`
	UpdatedAt time.Time              `json:"updated_at"`
	Details   map[string]interface{} `json:"details"`
}

// ToTaskDTO converts a Task, deriving its status at the given instant.
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	dto := TaskDTO{
		ID:          strconv.FormatUint(task.ID, 10),
		Title:       task.Title,
		Description: task.Description,
		Status:      task.StatusAt(now),
		Completed:   task.Completed,
		OwnerID:     task.OwnerID,
		AssignedBy:  task.AssignedBy,
		Attachments: make([]string, 0, len(task.Attachments)),
		CreatedAt:   task.CreatedAt,
	}

	if task.DueDate != nil {
		due := models.FormatDueDate(*task.DueDate)
		dto.DueDate = &due
	}

	for _, att := range task.Attachments {
		dto.Attachments = append(dto.Attachments, att.Filename)
	}

	return dto
}

// ToTaskDTOs converts a task list with a single shared read instant.
func ToTaskDTOs(tasks []models.Task, now time.Time) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskDTO(task, now)
	}
	return out
}

// ToDueInfoDTO extracts the due endpoint payload from a task.
func ToDueInfoDTO(task models.Task) DueInfoDTO {
	dto := DueInfoDTO{Description: task.Description}
	if task.DueDate != nil {
		due := models.FormatDueDate(*task.DueDate)
		dto.DueDate = &due
	}
	return dto
}

// ToLogDTO converts a HistoryLog entry, decoding its details payload.
func ToLogDTO(entry models.HistoryLog) LogDTO {
	details := map[string]interface{}{}
	if entry.Details != "" {
		// details were written by us; a decode failure still yields an entry
		_ = json.Unmarshal([]byte(entry.Details), &details)
	}
	return LogDTO{
		Action:    entry.Action,
		UpdatedBy: entry.UpdatedBy,
		UpdatedAt: entry.UpdatedAt,
		Details:   details,
	}
}

// ToLogDTOs converts a history slice preserving order.
func ToLogDTOs(entries []models.HistoryLog) []LogDTO {
	out := make([]LogDTO, len(entries))
	for i, entry := range entries {
		out[i] = ToLogDTO(entry)
	}
	return out
}
