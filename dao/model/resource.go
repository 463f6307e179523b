package model

import (
	"gorm.io/gorm"
)

// Resource belongs to exactly one user. Ownership is immutable:
// there is no update operation, rows are only created and deleted.
type Resource struct {
	gorm.Model
	Name   string `gorm:"type:varchar(200);not null"`
	UserID uint   `gorm:"index:resource_user;not null"`
	User   User
}
