package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory sqlite database with all tables migrated.
// The pool is capped at one connection so concurrent test calls serialize the
// way a single sqlite file would.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Swipe{},
		&models.Match{},
		&models.UsageRecord{},
		&models.Subscription{},
		&models.JobOffer{},
		&models.Mission{},
		&models.MissionFee{},
		&models.Invoice{},
		&models.Favorite{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func makeUser(t *testing.T, db *gorm.DB, userType models.UserType) *models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@test.dev",
		Password: "x",
		UserType: userType,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func makeOffer(t *testing.T, db *gorm.DB, employerID uuid.UUID) *models.JobOffer {
	t.Helper()
	offer := models.JobOffer{
		ID:         uuid.New(),
		EmployerID: employerID,
		Title:      "Pharmacist, full time",
		Active:     true,
	}
	if err := db.Create(&offer).Error; err != nil {
		t.Fatalf("failed to create offer: %v", err)
	}
	return &offer
}

func makeMission(t *testing.T, db *gorm.DB, labID uuid.UUID, days int) *models.Mission {
	t.Helper()
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	mission := models.Mission{
		ID:           uuid.New(),
		LaboratoryID: labID,
		Title:        "In-pharmacy animation",
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, days-1),
		Active:       true,
	}
	if err := db.Create(&mission).Error; err != nil {
		t.Fatalf("failed to create mission: %v", err)
	}
	return &mission
}
