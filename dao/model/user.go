package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Optional fields for user, kept out of the API envelopes
type UserAttribute struct {
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// User is the basic entity of the system.
// Email is the login identity and is immutable after creation.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;type:varchar(254);not null"`
	PasswordHash string `gorm:"type:varchar(256);not null"`
	IsStaff      bool   `gorm:"index:is_staff;not null;default:false"`
	FirstName    string `gorm:"type:varchar(150)"`
	LastName     string `gorm:"type:varchar(150)"`

	Attributes datatypes.JSONType[UserAttribute]

	Quota     *UserQuota `gorm:"foreignKey:UserID"`
	Resources []Resource
}
