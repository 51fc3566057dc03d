package repository

import (
	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
	"gorm.io/gorm"
)

// GormLogRepository is a GORM implementation of LogRepository
type GormLogRepository struct {
	db *gorm.DB
}

// NewLogRepository creates a new LogRepository
func NewLogRepository(db *gorm.DB) LogRepository {
	return &GormLogRepository{db: db}
}

// Append inserts one history entry
func (r *GormLogRepository) Append(entry *models.HistoryLog) error {
	return r.db.Create(entry).Error
}

// ListByActor returns an actor's entries, oldest to newest. The id tiebreak
// keeps the order stable when two entries share a timestamp.
func (r *GormLogRepository) ListByActor(actorID uint64) ([]models.HistoryLog, error) {
	entries := []models.HistoryLog{}
	err := r.db.
		Where("updated_by = ?", actorID).
		Order("updated_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
