package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/Ankitaa-Mannaa/task-manager/internal/authz"
	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
	"github.com/Ankitaa-Mannaa/task-manager/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type taskServiceTestEnv struct {
	db      *gorm.DB
	service *TaskService
	audit   *AuditRecorder
	users   int
}

func setupTaskServiceTest(t *testing.T, mode authz.Mode) taskServiceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Attachment{},
		&models.HistoryLog{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	audit := NewAuditRecorder(repository.NewLogRepository(db))
	service := NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewUserRepository(db),
		authz.Policy{Mode: mode},
		audit,
	)

	return taskServiceTestEnv{db: db, service: service, audit: audit}
}

func (env *taskServiceTestEnv) createUser(t *testing.T, role models.Role, managerID *uint64) *models.User {
	t.Helper()
	env.users++
	user := &models.User{
		Name:         "Test User",
		Email:        fmt.Sprintf("user%d@example.com", env.users),
		PasswordHash: "hashed",
		Role:         role,
		ManagerID:    managerID,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func uintPtr(v uint64) *uint64 { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func TestTaskService_CreateForSelf(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	user := env.createUser(t, models.RoleUser, nil)

	task, err := env.service.Create(Actor{ID: user.ID, Role: models.RoleUser}, CreateTaskInput{
		Title: "  write tests  ",
	})
	require.NoError(t, err)
	require.Equal(t, "write tests", task.Title)
	require.Equal(t, user.ID, task.OwnerID)
	require.Nil(t, task.AssignedBy)
}

func TestTaskService_CreateForOtherForbiddenForUser(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	actor := env.createUser(t, models.RoleUser, nil)
	other := env.createUser(t, models.RoleUser, nil)

	_, err := env.service.Create(Actor{ID: actor.ID, Role: models.RoleUser}, CreateTaskInput{
		Title:    "sneaky",
		Assignee: uintPtr(other.ID),
	})
	require.ErrorIs(t, err, ErrTaskForbidden)

	var count int64
	env.db.Model(&models.Task{}).Count(&count)
	require.Zero(t, count, "no task row may exist after a denied create")
}

func TestTaskService_CreateOnBehalfSetsAssignedBy(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	manager := env.createUser(t, models.RoleManager, nil)
	report := env.createUser(t, models.RoleUser, uintPtr(manager.ID))

	task, err := env.service.Create(Actor{ID: manager.ID, Role: models.RoleManager}, CreateTaskInput{
		Title:    "quarterly numbers",
		Assignee: uintPtr(report.ID),
	})
	require.NoError(t, err)
	require.Equal(t, report.ID, task.OwnerID)
	require.NotNil(t, task.AssignedBy)
	require.Equal(t, manager.ID, *task.AssignedBy)
}

func TestTaskService_CreateRejectsEmptyTitleAndBadDue(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	user := env.createUser(t, models.RoleUser, nil)
	actor := Actor{ID: user.ID, Role: models.RoleUser}

	_, err := env.service.Create(actor, CreateTaskInput{Title: "   "})
	require.ErrorIs(t, err, ErrTitleRequired)

	_, err = env.service.Create(actor, CreateTaskInput{Title: "t", DueDate: "not-a-date"})
	require.ErrorIs(t, err, ErrInvalidDue)
}

func TestTaskService_ListVisibility(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)

	admin := env.createUser(t, models.RoleAdmin, nil)
	manager := env.createUser(t, models.RoleManager, nil)
	report := env.createUser(t, models.RoleUser, uintPtr(manager.ID))
	unrelated := env.createUser(t, models.RoleUser, nil)

	_, err := env.service.Create(Actor{ID: admin.ID, Role: models.RoleAdmin}, CreateTaskInput{
		Title:    "assigned task",
		Assignee: uintPtr(report.ID),
	})
	require.NoError(t, err)

	ownerView, err := env.service.List(Actor{ID: report.ID, Role: models.RoleUser})
	require.NoError(t, err)
	require.Len(t, ownerView, 1)
	require.Equal(t, report.ID, ownerView[0].OwnerID)

	managerView, err := env.service.List(Actor{ID: manager.ID, Role: models.RoleManager})
	require.NoError(t, err)
	require.Len(t, managerView, 1)

	unrelatedView, err := env.service.List(Actor{ID: unrelated.ID, Role: models.RoleUser})
	require.NoError(t, err)
	require.Empty(t, unrelatedView)

	adminView, err := env.service.List(Actor{ID: admin.ID, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, adminView, 1)

	// a user's list never contains a foreign task
	for _, task := range ownerView {
		require.Equal(t, report.ID, task.OwnerID)
	}
}

func TestTaskService_UpdateBadDueDateLeavesTaskUnchanged(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	user := env.createUser(t, models.RoleUser, nil)
	actor := Actor{ID: user.ID, Role: models.RoleUser}

	task, err := env.service.Create(actor, CreateTaskInput{Title: "original", Description: "keep me"})
	require.NoError(t, err)

	_, err = env.service.Update(actor, task.ID, UpdateTaskInput{
		Title:   strPtr("changed"),
		DueDate: strPtr("not-a-date"),
	})
	require.ErrorIs(t, err, ErrInvalidDue)

	var stored models.Task
	require.NoError(t, env.db.First(&stored, task.ID).Error)
	require.Equal(t, "original", stored.Title)
	require.Equal(t, "keep me", stored.Description)
	require.Nil(t, stored.DueDate)
}

// A whitespace-only due date is the empty value after trimming: it must leave
// the field alone (no clear, no panic) while the other fields still apply.
func TestTaskService_UpdateBlankDueDateIsFieldNoOp(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	user := env.createUser(t, models.RoleUser, nil)
	actor := Actor{ID: user.ID, Role: models.RoleUser}

	task, err := env.service.Create(actor, CreateTaskInput{Title: "original", DueDate: "2025-06-01"})
	require.NoError(t, err)

	updated, err := env.service.Update(actor, task.ID, UpdateTaskInput{
		Title:   strPtr("renamed"),
		DueDate: strPtr("   "),
	})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.NotNil(t, updated.DueDate)
	require.Equal(t, "2025-06-01T00:00:00Z", models.FormatDueDate(*updated.DueDate))

	_, err = env.service.Update(actor, task.ID, UpdateTaskInput{DueDate: strPtr("")})
	require.NoError(t, err)

	var stored models.Task
	require.NoError(t, env.db.First(&stored, task.ID).Error)
	require.NotNil(t, stored.DueDate)
}

func TestTaskService_UpdateForbiddenForForeignOwner(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	owner := env.createUser(t, models.RoleUser, nil)
	other := env.createUser(t, models.RoleUser, nil)

	task, err := env.service.Create(Actor{ID: owner.ID, Role: models.RoleUser}, CreateTaskInput{Title: "mine"})
	require.NoError(t, err)

	_, err = env.service.Update(Actor{ID: other.ID, Role: models.RoleUser}, task.ID, UpdateTaskInput{
		Completed: boolPtr(true),
	})
	require.ErrorIs(t, err, ErrTaskForbidden)
}

func TestTaskService_ManagedModeUpdateRules(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeManaged)

	manager := env.createUser(t, models.RoleManager, nil)
	otherManager := env.createUser(t, models.RoleManager, nil)
	report := env.createUser(t, models.RoleUser, uintPtr(manager.ID))

	task, err := env.service.Create(Actor{ID: manager.ID, Role: models.RoleManager}, CreateTaskInput{
		Title:    "delegated",
		Assignee: uintPtr(report.ID),
	})
	require.NoError(t, err)

	// the owner cannot update in managed mode
	_, err = env.service.Update(Actor{ID: report.ID, Role: models.RoleUser}, task.ID, UpdateTaskInput{
		Completed: boolPtr(true),
	})
	require.ErrorIs(t, err, ErrTaskForbidden)

	// a manager who did not assign the task cannot update it
	_, err = env.service.Update(Actor{ID: otherManager.ID, Role: models.RoleManager}, task.ID, UpdateTaskInput{
		Completed: boolPtr(true),
	})
	require.ErrorIs(t, err, ErrTaskForbidden)

	// the assigning manager can
	updated, err := env.service.Update(Actor{ID: manager.ID, Role: models.RoleManager}, task.ID, UpdateTaskInput{
		Completed: boolPtr(true),
	})
	require.NoError(t, err)
	require.True(t, updated.Completed)

	// delete stays admin-only
	err = env.service.Delete(Actor{ID: manager.ID, Role: models.RoleManager}, task.ID)
	require.ErrorIs(t, err, ErrTaskForbidden)
}

func TestTaskService_DeleteTwiceReportsNotFound(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	user := env.createUser(t, models.RoleUser, nil)
	actor := Actor{ID: user.ID, Role: models.RoleUser}

	task, err := env.service.Create(actor, CreateTaskInput{Title: "ephemeral"})
	require.NoError(t, err)

	require.NoError(t, env.service.Delete(actor, task.ID))
	require.ErrorIs(t, env.service.Delete(actor, task.ID), ErrTaskNotFound)
}

func TestTaskService_AuditTrailOrder(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	user := env.createUser(t, models.RoleUser, nil)
	actor := Actor{ID: user.ID, Role: models.RoleUser}

	task, err := env.service.Create(actor, CreateTaskInput{Title: "tracked"})
	require.NoError(t, err)

	_, err = env.service.Update(actor, task.ID, UpdateTaskInput{Completed: boolPtr(true)})
	require.NoError(t, err)

	require.NoError(t, env.service.Delete(actor, task.ID))

	entries, err := env.audit.History(actor.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, models.LogActionCreate, entries[0].Action)
	require.Equal(t, models.LogActionUpdate, entries[1].Action)
	require.Equal(t, models.LogActionDelete, entries[2].Action)
	for _, entry := range entries {
		require.Equal(t, actor.ID, entry.UpdatedBy)
	}
}

func TestTaskService_DueInfoRoundTripNormalizesToUTC(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	user := env.createUser(t, models.RoleUser, nil)
	actor := Actor{ID: user.ID, Role: models.RoleUser}

	task, err := env.service.Create(actor, CreateTaskInput{
		Title:   "tz test",
		DueDate: "2025-03-01T10:00:00+05:00",
	})
	require.NoError(t, err)

	got, err := env.service.DueInfo(actor, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	require.Equal(t, "2025-03-01T05:00:00Z", models.FormatDueDate(*got.DueDate))
}

func TestTaskService_DueInfoVisibility(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	owner := env.createUser(t, models.RoleUser, nil)
	stranger := env.createUser(t, models.RoleUser, nil)

	task, err := env.service.Create(Actor{ID: owner.ID, Role: models.RoleUser}, CreateTaskInput{Title: "secret"})
	require.NoError(t, err)

	_, err = env.service.DueInfo(Actor{ID: stranger.ID, Role: models.RoleUser}, task.ID)
	require.ErrorIs(t, err, ErrTaskForbidden)

	_, err = env.service.DueInfo(Actor{ID: owner.ID, Role: models.RoleUser}, task.ID+999)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_AttachKeepsOrderAndDuplicates(t *testing.T) {
	env := setupTaskServiceTest(t, authz.ModeSelf)
	user := env.createUser(t, models.RoleUser, nil)
	actor := Actor{ID: user.ID, Role: models.RoleUser}

	task, err := env.service.Create(actor, CreateTaskInput{Title: "with files"})
	require.NoError(t, err)

	for _, name := range []string{"a.txt", "b.txt", "a.txt"} {
		_, err = env.service.Attach(actor, task.ID, name)
		require.NoError(t, err)
	}

	reloaded, err := env.service.DueInfo(actor, task.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Attachments, 3)
	require.Equal(t, "a.txt", reloaded.Attachments[0].Filename)
	require.Equal(t, "b.txt", reloaded.Attachments[1].Filename)
	require.Equal(t, "a.txt", reloaded.Attachments[2].Filename)
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2025-03-01T10:00:00Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), *got)

	// naive timestamps are treated as UTC
	got, err = ParseDueDate("2025-03-01T10:00:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), *got)

	got, err = ParseDueDate("2025-03-01")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = ParseDueDate("")
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = ParseDueDate("tomorrow")
	require.Error(t, err)
}
