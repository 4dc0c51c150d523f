package models

import "time"

import "github.com/google/uuid"

// UsageRecord holds one billing period's counters for one user. Rows are
// created zeroed on first access and only ever mutated through atomic
// column increments; a new period simply starts a fresh row, which is what
// resets the monthly counters without any scheduled job.
//
// SuperLikesToday is the one daily counter. SuperLikesDate is the calendar
// date (YYYY-MM-DD, server timezone) the counter belongs to; when it lags
// behind today the counter is logically zero and the next consume resets it
// in the same UPDATE that increments it.
type UsageRecord struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Period string    `gorm:"size:7;primaryKey" json:"period"` // YYYY-MM

	MissionsPublished  int `gorm:"not null;default:0" json:"missions_published"`
	MissionsConfirmed  int `gorm:"not null;default:0" json:"missions_confirmed"`
	AlertsSent         int `gorm:"not null;default:0" json:"alerts_sent"`
	FavoritesCount     int `gorm:"not null;default:0" json:"favorites_count"`
	PostsPublished     int `gorm:"not null;default:0" json:"posts_published"`
	VideosPublished    int `gorm:"not null;default:0" json:"videos_published"`
	SponsoredWeeksUsed int `gorm:"not null;default:0" json:"sponsored_weeks_used"`
	SponsoredCardsUsed int `gorm:"not null;default:0" json:"sponsored_cards_used"`
	PhotosCount        int `gorm:"not null;default:0" json:"photos_count"`

	SuperLikesToday int    `gorm:"not null;default:0" json:"super_likes_today"`
	SuperLikesDate  string `gorm:"size:10;not null;default:''" json:"super_likes_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrentPeriod returns the YYYY-MM period stamp for t.
func CurrentPeriod(t time.Time) string {
	return t.Format("2006-01")
}

// Day returns the YYYY-MM-DD date stamp for t.
func Day(t time.Time) string {
	return t.Format("2006-01-02")
}
