package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/plans"
	"gorm.io/gorm"
)

// ListingService owns the swipeable inventory: employers' job and internship
// offers, and laboratories' missions. Mission publication is quota-gated.
type ListingService struct {
	db    *gorm.DB
	quota *QuotaService
}

func NewListingService(db *gorm.DB, quota *QuotaService) *ListingService {
	return &ListingService{db: db, quota: quota}
}

// PublishMissionInput carries the fields a laboratory sets when posting.
type PublishMissionInput struct {
	Title     string
	City      string
	StartDate time.Time
	EndDate   time.Time
}

// PublishMission creates a mission if the laboratory's monthly publication
// quota has room. The quota check and increment are one atomic consume, so
// two devices posting at the cap cannot both get through.
func (s *ListingService) PublishMission(ctx context.Context, labID uuid.UUID, in PublishMissionInput) (*models.Mission, *LimitStatus, error) {
	var lab models.User
	if err := s.db.WithContext(ctx).Select("id", "user_type").First(&lab, "id = ?", labID).Error; err != nil {
		return nil, nil, err
	}
	if lab.UserType != models.UserTypeLaboratory {
		return nil, nil, ErrInvalidUserType
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, nil, ErrInvalidDates
	}

	status, err := s.quota.Consume(ctx, labID, plans.LimitMissionsPerMonth)
	if err != nil {
		return nil, nil, err
	}
	if !status.Allowed {
		return nil, status, nil
	}

	mission := models.Mission{
		ID:           uuid.New(),
		LaboratoryID: labID,
		Title:        in.Title,
		City:         in.City,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Active:       true,
	}
	if err := s.db.WithContext(ctx).Create(&mission).Error; err != nil {
		// The slot was consumed but the row failed; surface the error, the
		// counter stays conservative.
		return nil, status, err
	}
	return &mission, status, nil
}

// CreateOfferInput carries the fields an employer sets when posting.
type CreateOfferInput struct {
	Title      string
	City       string
	Internship bool
}

// CreateOffer creates a job or internship offer. Offers are not quota-gated.
func (s *ListingService) CreateOffer(ctx context.Context, employerID uuid.UUID, in CreateOfferInput) (*models.JobOffer, error) {
	var employer models.User
	if err := s.db.WithContext(ctx).Select("id", "user_type").First(&employer, "id = ?", employerID).Error; err != nil {
		return nil, err
	}
	if employer.UserType != models.UserTypeEmployer {
		return nil, ErrInvalidUserType
	}

	offer := models.JobOffer{
		ID:         uuid.New(),
		EmployerID: employerID,
		Title:      in.Title,
		City:       in.City,
		Internship: in.Internship,
		Active:     true,
	}
	if err := s.db.WithContext(ctx).Create(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// GetMission returns a mission by ID.
func (s *ListingService) GetMission(ctx context.Context, id uuid.UUID) (*models.Mission, error) {
	var mission models.Mission
	err := s.db.WithContext(ctx).First(&mission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

// GetOffer returns an offer by ID.
func (s *ListingService) GetOffer(ctx context.Context, id uuid.UUID) (*models.JobOffer, error) {
	var offer models.JobOffer
	err := s.db.WithContext(ctx).First(&offer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListMissionsForLab returns the laboratory's own missions, newest first.
func (s *ListingService) ListMissionsForLab(ctx context.Context, labID uuid.UUID) ([]models.Mission, error) {
	var missions []models.Mission
	err := s.db.WithContext(ctx).
		Where("laboratory_id = ?", labID).
		Order("created_at DESC").
		Find(&missions).Error
	return missions, err
}

// ListOffersForEmployer returns the employer's own offers, newest first.
func (s *ListingService) ListOffersForEmployer(ctx context.Context, employerID uuid.UUID) ([]models.JobOffer, error) {
	var offers []models.JobOffer
	err := s.db.WithContext(ctx).
		Where("employer_id = ?", employerID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}
