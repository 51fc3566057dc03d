package repository

import (
	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with its attachments in upload order
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	err := r.db.
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("attachments.id ASC")
		}).
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListVisible retrieves the tasks within a visibility scope
func (r *GormTaskRepository) ListVisible(scope TaskScope) ([]models.Task, error) {
	tasks := []models.Task{}

	if !scope.All && len(scope.OwnerIDs) == 0 {
		return tasks, nil
	}

	query := r.db.Model(&models.Task{}).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("attachments.id ASC")
		}).
		Order("tasks.created_at ASC, tasks.id ASC")

	if !scope.All {
		query = query.Where("tasks.owner_id IN ?", scope.OwnerIDs)
	}

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateFields applies column changes with the mutation scope in the WHERE
// clause. Check-and-set: a concurrent delete or ownership change makes the
// predicate miss and the caller sees zero rows affected.
func (r *GormTaskRepository) UpdateFields(id uint64, scope MutationScope, changes map[string]interface{}) (int64, error) {
	res := r.scoped(id, scope).Updates(changes)
	return res.RowsAffected, res.Error
}

// Delete soft deletes the task matching the id and the mutation scope
func (r *GormTaskRepository) Delete(id uint64, scope MutationScope) (int64, error) {
	res := r.scoped(id, scope).Delete(&models.Task{})
	return res.RowsAffected, res.Error
}

// AddAttachment appends a filename reference to a task
func (r *GormTaskRepository) AddAttachment(att *models.Attachment) error {
	return r.db.Create(att).Error
}

func (r *GormTaskRepository) scoped(id uint64, scope MutationScope) *gorm.DB {
	query := r.db.Model(&models.Task{}).Where("id = ?", id)
	if scope.OwnerID != nil {
		query = query.Where("owner_id = ?", *scope.OwnerID)
	}
	if scope.AssignedBy != nil {
		query = query.Where("assigned_by = ?", *scope.AssignedBy)
	}
	return query
}
