package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserType identifies which side of the marketplace an account belongs to.
type UserType string

const (
	UserTypeCandidate  UserType = "candidate"
	UserTypeEmployer   UserType = "employer"
	UserTypeLaboratory UserType = "laboratory"
	UserTypeAnimator   UserType = "animator"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeCandidate, UserTypeEmployer, UserTypeLaboratory, UserTypeAnimator:
		return true
	}
	return false
}

// User is the account record shared by all four marketplace roles.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	UserType     UserType       `gorm:"size:20;not null;index" json:"user_type"`
	DisplayName  string         `gorm:"size:120" json:"display_name"`
	Role         string         `gorm:"size:20;default:'user'" json:"role"`
	AuthProvider string         `gorm:"size:50;default:'email'" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
