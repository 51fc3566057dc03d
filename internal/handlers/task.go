package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Ankitaa-Mannaa/task-manager/internal/dto"
	apierrors "github.com/Ankitaa-Mannaa/task-manager/internal/errors"
	"github.com/Ankitaa-Mannaa/task-manager/internal/services"
	"github.com/Ankitaa-Mannaa/task-manager/internal/storage"
	"github.com/gin-gonic/gin"
)

// TaskHandler coordinates the task lifecycle HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
	audit       *services.AuditRecorder
	files       *storage.FileStore
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, audit *services.AuditRecorder, files *storage.FileStore) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		audit:       audit,
		files:       files,
	}
}

// Create handles POST /task/create.
func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateRequest struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		DueDate     string  `json:"due_date"`
		Completed   bool    `json:"completed"`
		Assignee    *uint64 `json:"assignee"`
	}

	var req CreateRequest
	if err := bindStrict(c, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	_, err := h.taskService.Create(actor, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
		Assignee:    req.Assignee,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "Task created"})
}

// List handles GET /task/all: the visibility-scoped list with the status of
// every task derived at response time.
func (h *TaskHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.taskService.List(actor)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks, time.Now().UTC()))
}

// Update handles PUT /task/:taskId.
func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	type UpdateRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
		DueDate     *string `json:"due_date"`
	}

	var req UpdateRequest
	if err := bindStrict(c, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	_, err := h.taskService.Update(actor, taskID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Task updated"})
}

// Delete handles DELETE /task/:taskId.
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	if err := h.taskService.Delete(actor, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Task deleted"})
}

// Logs handles GET /task/logs: the actor's own audit trail, oldest first.
func (h *TaskHandler) Logs(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	entries, err := h.audit.History(actor.ID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToLogDTOs(entries))
}

// DueInfo handles GET /task/:taskId/due.
func (h *TaskHandler) DueInfo(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	task, err := h.taskService.DueInfo(actor, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDueInfoDTO(*task))
}

// Upload handles POST /task/:taskId/upload. The file bytes are stored before
// the filename is attached to the task, so the reference never dangles.
func (h *TaskHandler) Upload(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "No file part in the request")
		return
	}
	if fh.Filename == "" {
		apierrors.BadRequest(c, "No file selected")
		return
	}

	// authorization first so an unauthorized caller cannot write bytes
	if err := h.taskService.AuthorizeUpload(actor, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	filename, err := h.files.Save(fh)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFilename) {
			apierrors.BadRequest(c, "No file selected")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	if _, err := h.taskService.Attach(actor, taskID, filename); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "File uploaded", "filename": filename})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.BadRequest(c, "Title required")
	case errors.Is(err, services.ErrInvalidDue):
		apierrors.BadRequest(c, "Bad due_date")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskForbidden):
		apierrors.Forbidden(c, "Not authorized")
	default:
		apierrors.InternalError(c, "")
	}
}
