package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobOffer is an employer's job or internship posting. Full listing CRUD
// lives in the profile services; the matching engine only needs ownership
// and liveness.
type JobOffer struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmployerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"employer_id"`
	Title      string         `gorm:"size:200;not null" json:"title"`
	Internship bool           `gorm:"not null;default:false" json:"internship"`
	City       string         `gorm:"size:120" json:"city"`
	Active     bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Employer   User           `gorm:"foreignKey:EmployerID" json:"-"`
}

// Mission is a laboratory's animation mission. StartDate and EndDate bound
// the engagement; the confirmation fee bracket is derived from their
// inclusive day count.
type Mission struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LaboratoryID uuid.UUID      `gorm:"type:uuid;not null;index" json:"laboratory_id"`
	Title        string         `gorm:"size:200;not null" json:"title"`
	City         string         `gorm:"size:120" json:"city"`
	StartDate    time.Time      `gorm:"not null" json:"start_date"`
	EndDate      time.Time      `gorm:"not null" json:"end_date"`
	Active       bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Laboratory   User           `gorm:"foreignKey:LaboratoryID" json:"-"`
}

// DurationDays returns the inclusive day count between start and end, both
// endpoints counted. A mission starting and ending the same day is 1 day.
func (m *Mission) DurationDays() int {
	start := m.StartDate.Truncate(24 * time.Hour)
	end := m.EndDate.Truncate(24 * time.Hour)
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}
