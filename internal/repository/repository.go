package repository

import (
	"time"

	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithBootstrapRole creates a user. Inside the same transaction it
	// checks the total user count and promotes the very first user to admin,
	// so two concurrent first signups cannot both win.
	CreateWithBootstrapRole(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized (lowercase, trimmed) email
	FindByEmail(email string) (*models.User, error)

	// UpdateRole sets a user's role; reports whether a row matched
	UpdateRole(id uint64, role models.Role) (bool, error)

	// RecordLogin stamps the user's last login time
	RecordLogin(id uint64, at time.Time) error

	// SubordinateIDs lists ids of users whose manager is managerID
	SubordinateIDs(managerID uint64) ([]uint64, error)
}

// TaskScope restricts a list query to a set of owners. All takes precedence.
type TaskScope struct {
	All      bool
	OwnerIDs []uint64
}

// MutationScope is the ownership predicate a conditional update or delete
// must carry in addition to the task id. Nil fields are unconstrained, so an
// empty scope means "id only" (admin access).
type MutationScope struct {
	OwnerID    *uint64
	AssignedBy *uint64
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with its attachments
	FindByID(id uint64) (*models.Task, error)

	// ListVisible retrieves the tasks within a visibility scope
	ListVisible(scope TaskScope) ([]models.Task, error)

	// UpdateFields applies a set of column changes to the task matching the
	// id and the mutation scope; returns the number of rows affected
	UpdateFields(id uint64, scope MutationScope, changes map[string]interface{}) (int64, error)

	// Delete soft deletes the task matching the id and the mutation scope;
	// returns the number of rows affected
	Delete(id uint64, scope MutationScope) (int64, error)

	// AddAttachment appends a filename reference to a task
	AddAttachment(att *models.Attachment) error
}

// LogRepository defines the interface for the append-only audit log
type LogRepository interface {
	// Append inserts one history entry
	Append(entry *models.HistoryLog) error

	// ListByActor returns an actor's entries, oldest to newest
	ListByActor(actorID uint64) ([]models.HistoryLog, error)
}
