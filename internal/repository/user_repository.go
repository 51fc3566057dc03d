package repository

import (
	"errors"
	"time"

	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithBootstrapRole creates a user, promoting the first user in the
// system to admin. The count decides who tries to claim the bootstrap marker,
// but the unique index on the marker is what makes the promotion race-free:
// two concurrent first signups both read count 0, and the index rejects the
// second claim. The loser retries as a regular signup with its requested role.
func (r *GormUserRepository) CreateWithBootstrapRole(user *models.User) error {
	requestedRole := user.Role

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			claimed := true
			user.Role = models.RoleAdmin
			user.BootstrapAdmin = &claimed
		}
		return tx.Create(user).Error
	})
	if err == nil || user.BootstrapAdmin == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	// Lost the first-admin race. Retry without the marker; a duplicate email
	// still surfaces as gorm.ErrDuplicatedKey from this second insert.
	user.ID = 0
	user.Role = requestedRole
	user.BootstrapAdmin = nil
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email. Callers normalize the email first.
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateRole sets a user's role and reports whether a row matched.
func (r *GormUserRepository) UpdateRole(id uint64, role models.Role) (bool, error) {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RecordLogin stamps the user's last login time
func (r *GormUserRepository) RecordLogin(id uint64, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// SubordinateIDs lists ids of users whose manager is managerID
func (r *GormUserRepository) SubordinateIDs(managerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.User{}).
		Where("manager_id = ?", managerID).
		Pluck("id", &ids).Error
	return ids, err
}
