package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// ValidRequestedRole reports whether a role may be requested at signup or
// assigned through the role-change endpoint. Admin is never assignable this
// way; the only admin is the first user created in the system.
func ValidRequestedRole(r Role) bool {
	return r == RoleUser || r == RoleManager
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	// BootstrapAdmin marks the one first-user admin. The unique index (null
	// for everyone else) is the store-level guard: two racing first signups
	// cannot both claim the marker.
	BootstrapAdmin *bool `gorm:"uniqueIndex" json:"-"`
	ManagerID    *uint64        `gorm:"index" json:"manager_id"`
	Status       UserStatus     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	LastLogin    *time.Time     `json:"last_login"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
