package models

import "time"

type LogAction string

const (
	LogActionCreate LogAction = "create"
	LogActionUpdate LogAction = "update"
	LogActionDelete LogAction = "delete"
	LogActionUpload LogAction = "upload"
)

// HistoryLog is one append-only audit entry. Entries are written after the
// mutation they describe has committed and are never updated or deleted.
type HistoryLog struct {
	ID        uint64    `gorm:"primarykey" json:"-"`
	Action    LogAction `gorm:"type:varchar(20);not null" json:"action"`
	UpdatedBy uint64    `gorm:"not null;index" json:"updated_by"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
	Details   string    `gorm:"type:text" json:"details"`
}
