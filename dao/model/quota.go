package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserQuota caps the number of resources a user may own.
// Exactly one row per user, created together with the user.
// Limit == nil means unlimited.
type UserQuota struct {
	UserID    uint   `gorm:"primaryKey"`
	Limit     *int64 `gorm:"type:bigint;check:\"limit\" >= 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type QuotaChangeDetail struct {
	OldLimit  *int64 `json:"oldLimit"`
	NewLimit  *int64 `json:"newLimit"`
	ChangedBy uint   `json:"changedBy,omitempty"` // acting admin, 0 if unknown
}

// QuotaChange is an audit row written in the same transaction
// as a successful limit change.
type QuotaChange struct {
	gorm.Model
	UserID uint `gorm:"index:quota_change_user;not null"`
	Detail datatypes.JSONType[QuotaChangeDetail]
}
