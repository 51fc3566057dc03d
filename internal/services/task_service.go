package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ankitaa-Mannaa/task-manager/internal/authz"
	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
	"github.com/Ankitaa-Mannaa/task-manager/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTitleRequired = errors.New("title required")
	ErrInvalidDue    = errors.New("bad due_date")
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskForbidden = errors.New("not authorized")
)

// TaskService handles the task lifecycle: authorization-scoped CRUD, lazy
// status derivation, attachments, and the audit entry accompanying every
// mutation.
type TaskService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	policy authz.Policy
	audit  *AuditRecorder
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, policy authz.Policy, audit *AuditRecorder) *TaskService {
	return &TaskService{
		tasks:  tasks,
		users:  users,
		policy: policy,
		audit:  audit,
	}
}

// CreateTaskInput represents input for creating a task. DueDate is the raw
// request string; parsing failures reject the write before any mutation.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     string
	Completed   bool
	Assignee    *uint64
}

// Create creates a task owned by the assignee (the actor when absent).
// Regular users may only create tasks for themselves.
func (s *TaskService) Create(actor Actor, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	due, err := ParseDueDate(input.DueDate)
	if err != nil {
		return nil, ErrInvalidDue
	}

	ownerID := actor.ID
	if input.Assignee != nil {
		ownerID = *input.Assignee
	}

	if !s.policy.CanCreate(actor.Role, actor.ID, ownerID) {
		return nil, ErrTaskForbidden
	}

	task := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     ownerID,
		Completed:   input.Completed,
		DueDate:     due,
	}
	if ownerID != actor.ID {
		assignedBy := actor.ID
		task.AssignedBy = &assignedBy
	}

	if err := s.tasks.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.audit.Record(models.LogActionCreate, actor.ID, map[string]interface{}{
		"title": task.Title,
	})

	return task, nil
}

// List returns the tasks visible to the actor: all of them for an admin,
// the subordinates' tasks for a manager, and the actor's own otherwise.
func (s *TaskService) List(actor Actor) ([]models.Task, error) {
	var scope repository.TaskScope
	switch actor.Role {
	case models.RoleAdmin:
		scope.All = true
	case models.RoleManager:
		ids, err := s.users.SubordinateIDs(actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve subordinates: %w", err)
		}
		scope.OwnerIDs = ids
	default:
		scope.OwnerIDs = []uint64{actor.ID}
	}

	tasks, err := s.tasks.ListVisible(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// untouched; DueDate is the raw request string.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *string
}

// Update applies the provided fields atomically. Validation failures reject
// the whole update before any mutation; the conditional write re-checks
// ownership so a concurrent delete surfaces as not found.
func (s *TaskService) Update(actor Actor, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	changes := map[string]interface{}{}
	audited := map[string]interface{}{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		changes["title"] = title
		audited["title"] = title
	}
	if input.Description != nil {
		changes["description"] = strings.TrimSpace(*input.Description)
		audited["description"] = changes["description"]
	}
	if input.Completed != nil {
		changes["completed"] = *input.Completed
		audited["completed"] = *input.Completed
	}
	if input.DueDate != nil {
		due, err := ParseDueDate(*input.DueDate)
		if err != nil {
			return nil, ErrInvalidDue
		}
		// a blank due date is a no-op on the field, not a clear
		if due != nil {
			changes["due_date"] = due
			audited["due_date"] = models.FormatDueDate(*due)
		}
	}

	task, meta, err := s.loadWithMeta(actor, taskID)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanUpdate(actor.Role, actor.ID, meta) {
		return nil, ErrTaskForbidden
	}

	if len(changes) > 0 {
		affected, err := s.tasks.UpdateFields(taskID, s.mutationScope(actor), changes)
		if err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
		if affected == 0 {
			// Lost the race against a concurrent delete.
			return nil, ErrTaskNotFound
		}

		s.audit.Record(models.LogActionUpdate, actor.ID, map[string]interface{}{
			"task_id": taskID,
			"changes": audited,
		})

		task, err = s.tasks.FindByID(taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload task: %w", err)
		}
	}

	return task, nil
}

// Delete removes a task. The second delete of the same id reports not found.
func (s *TaskService) Delete(actor Actor, taskID uint64) error {
	_, meta, err := s.loadWithMeta(actor, taskID)
	if err != nil {
		return err
	}

	if !s.policy.CanDelete(actor.Role, actor.ID, meta) {
		return ErrTaskForbidden
	}

	affected, err := s.tasks.Delete(taskID, s.mutationScope(actor))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	s.audit.Record(models.LogActionDelete, actor.ID, map[string]interface{}{
		"task_id": taskID,
	})

	return nil
}

// AuthorizeUpload checks that the actor may attach files to the task, so the
// caller can refuse before accepting any file bytes.
func (s *TaskService) AuthorizeUpload(actor Actor, taskID uint64) error {
	_, meta, err := s.loadWithMeta(actor, taskID)
	if err != nil {
		return err
	}
	if !s.policy.CanUpload(actor.Role, actor.ID, meta) {
		return ErrTaskForbidden
	}
	return nil
}

// Attach records a filename on the task. Callers store the file bytes first;
// the reference is only written once the bytes are durable.
func (s *TaskService) Attach(actor Actor, taskID uint64, filename string) (*models.Task, error) {
	_, meta, err := s.loadWithMeta(actor, taskID)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanUpload(actor.Role, actor.ID, meta) {
		return nil, ErrTaskForbidden
	}

	att := &models.Attachment{
		TaskID:   taskID,
		Filename: filename,
	}
	if err := s.tasks.AddAttachment(att); err != nil {
		return nil, fmt.Errorf("failed to attach file: %w", err)
	}

	s.audit.Record(models.LogActionUpload, actor.ID, map[string]interface{}{
		"task_id": taskID,
		"file":    filename,
	})

	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return task, nil
}

// DueInfo returns the task for its due date and description, applying the
// same visibility rule as List.
func (s *TaskService) DueInfo(actor Actor, taskID uint64) (*models.Task, error) {
	task, meta, err := s.loadWithMeta(actor, taskID)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanView(actor.Role, actor.ID, meta) {
		return nil, ErrTaskForbidden
	}

	return task, nil
}

// loadWithMeta fetches the task and assembles the policy inputs. The owner's
// manager is only resolved when the actor is a manager, since no other rule
// consults it.
func (s *TaskService) loadWithMeta(actor Actor, taskID uint64) (*models.Task, authz.TaskMeta, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.TaskMeta{}, ErrTaskNotFound
		}
		return nil, authz.TaskMeta{}, fmt.Errorf("failed to find task: %w", err)
	}

	meta := authz.TaskMeta{
		OwnerID:    task.OwnerID,
		AssignedBy: task.AssignedBy,
	}

	if actor.Role == models.RoleManager {
		owner, err := s.users.FindByID(task.OwnerID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, authz.TaskMeta{}, fmt.Errorf("failed to find task owner: %w", err)
			}
		} else {
			meta.OwnerManagerID = owner.ManagerID
		}
	}

	return task, meta, nil
}

// mutationScope is the ownership predicate the conditional update/delete
// carries in its WHERE clause, mirroring the policy the actor passed.
func (s *TaskService) mutationScope(actor Actor) repository.MutationScope {
	var scope repository.MutationScope
	switch {
	case actor.Role == models.RoleAdmin:
		// id-only predicate
	case s.policy.Mode == authz.ModeManaged:
		assignedBy := actor.ID
		scope.AssignedBy = &assignedBy
	default:
		ownerID := actor.ID
		scope.OwnerID = &ownerID
	}
	return scope
}

// dueDateLayouts are the accepted ISO-8601 shapes. Timestamps without an
// explicit zone are treated as UTC.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses an ISO-8601 due date and normalizes it to UTC. An
// empty string means no due date. Malformed values are rejected here, at the
// write boundary, never silently dropped.
func ParseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("unparseable due date %q", raw)
}
