package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchService is the match reconciler. Every positive swipe funnels into
// OnLike, which folds it into the single Match row for the pairing and
// detects the pending→matched transition exactly once.
type MatchService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{db: db, now: time.Now}
}

// pairing describes the Match row a positive swipe belongs to and which
// side of it the actor occupies.
type pairing struct {
	key         string
	kind        models.MatchKind
	offerID     *uuid.UUID
	candidateID *uuid.UUID
	missionID   *uuid.UUID
	animatorID  *uuid.UUID
	ownerID     uuid.UUID
	// sideA is the candidate/animator seat; sideB the employer/laboratory one.
	sideA bool
}

// counterpart returns the user on the other side of the pairing from actorID.
func (p *pairing) counterpart(actorID uuid.UUID) uuid.UUID {
	if p.ownerID == actorID {
		if p.candidateID != nil {
			return *p.candidateID
		}
		if p.animatorID != nil {
			return *p.animatorID
		}
		return uuid.Nil
	}
	return p.ownerID
}

// OnLike reconciles a recorded like/superlike into its Match row. It returns
// the resulting match and whether this call caused the pending→matched
// transition. A vanished target is not an error: the swipe stays recorded
// and the match is simply nil.
func (s *MatchService) OnLike(ctx context.Context, actor *models.User, swipe *models.Swipe) (*models.Match, bool, error) {
	p, err := s.resolvePairing(ctx, actor, swipe)
	if err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, nil
	}
	return s.reconcile(ctx, p, swipe.IsSuperLike)
}

func (s *MatchService) resolvePairing(ctx context.Context, actor *models.User, swipe *models.Swipe) (*pairing, error) {
	switch swipe.TargetType {
	case models.TargetJobOffer, models.TargetInternshipOffer:
		// Candidate liking an offer; the opposite side is the owning employer.
		offer, err := s.offer(ctx, swipe.TargetID)
		if err != nil || offer == nil {
			return nil, err
		}
		candidateID := actor.ID
		return &pairing{
			key:         models.OfferPairingKey(offer.ID, candidateID),
			kind:        models.MatchKindCandidateOffer,
			offerID:     &offer.ID,
			candidateID: &candidateID,
			ownerID:     offer.EmployerID,
			sideA:       true,
		}, nil

	case models.TargetCandidate:
		// Employer liking a candidate for a specific offer.
		if swipe.ContextID == nil {
			return nil, ErrMissingContext
		}
		offer, err := s.offer(ctx, *swipe.ContextID)
		if err != nil || offer == nil {
			return nil, err
		}
		candidateID := swipe.TargetID
		return &pairing{
			key:         models.OfferPairingKey(offer.ID, candidateID),
			kind:        models.MatchKindCandidateOffer,
			offerID:     &offer.ID,
			candidateID: &candidateID,
			ownerID:     offer.EmployerID,
			sideA:       false,
		}, nil

	case models.TargetMission:
		// Animator liking a mission; the opposite side is the laboratory.
		mission, err := s.mission(ctx, swipe.TargetID)
		if err != nil || mission == nil {
			return nil, err
		}
		animatorID := actor.ID
		return &pairing{
			key:        models.MissionPairingKey(mission.ID, animatorID),
			kind:       models.MatchKindMissionAnimator,
			missionID:  &mission.ID,
			animatorID: &animatorID,
			ownerID:    mission.LaboratoryID,
			sideA:      true,
		}, nil

	case models.TargetAnimator:
		// Laboratory liking an animator for a specific mission.
		if swipe.ContextID == nil {
			return nil, ErrMissingContext
		}
		mission, err := s.mission(ctx, *swipe.ContextID)
		if err != nil || mission == nil {
			return nil, err
		}
		if mission.LaboratoryID != actor.ID {
			return nil, ErrNotMissionOwner
		}
		animatorID := swipe.TargetID
		return &pairing{
			key:        models.MissionPairingKey(mission.ID, animatorID),
			kind:       models.MatchKindMissionAnimator,
			missionID:  &mission.ID,
			animatorID: &animatorID,
			ownerID:    mission.LaboratoryID,
			sideA:      false,
		}, nil
	}
	return nil, ErrInvalidTargetType
}

func (s *MatchService) offer(ctx context.Context, id uuid.UUID) (*models.JobOffer, error) {
	var offer models.JobOffer
	err := s.db.WithContext(ctx).First(&offer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (s *MatchService) mission(ctx context.Context, id uuid.UUID) (*models.Mission, error) {
	var mission models.Mission
	err := s.db.WithContext(ctx).First(&mission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

// reconcile merges the caller's like into the pairing's Match row inside a
// transaction with a row lock, so the two arrival orders converge and the
// matched transition is detected exactly once.
func (s *MatchService) reconcile(ctx context.Context, p *pairing, superLike bool) (*models.Match, bool, error) {
	var (
		result *models.Match
		newly  bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skeleton := models.Match{
			ID:          uuid.New(),
			PairingKey:  p.key,
			Kind:        p.kind,
			OfferID:     p.offerID,
			CandidateID: p.candidateID,
			MissionID:   p.missionID,
			AnimatorID:  p.animatorID,
			OwnerID:     p.ownerID,
			Status:      models.MatchPending,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pairing_key"}},
			DoNothing: true,
		}).Create(&skeleton).Error; err != nil {
			return err
		}

		lookup := tx
		if tx.Dialector.Name() == "postgres" {
			lookup = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var m models.Match
		if err := lookup.Where("pairing_key = ?", p.key).First(&m).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if p.sideA && !m.SideALiked {
			m.SideALiked = true
			updates["side_a_liked"] = true
		}
		if !p.sideA && !m.SideBLiked {
			m.SideBLiked = true
			updates["side_b_liked"] = true
		}
		if superLike && !m.IsSuperLike {
			m.IsSuperLike = true
			updates["is_super_like"] = true
		}
		if m.SideALiked && m.SideBLiked && m.Status != models.MatchMatched {
			// The opposite side's flag may be stale: a like overwritten by a
			// dislike leaves it set. The ledger's current action decides.
			held, err := sideLikeHeld(tx, p, !p.sideA)
			if err != nil {
				return err
			}
			if !held {
				if p.sideA {
					m.SideBLiked = false
					updates["side_b_liked"] = false
				} else {
					m.SideALiked = false
					updates["side_a_liked"] = false
				}
			} else {
				now := s.now().UTC()
				m.Status = models.MatchMatched
				m.MatchedAt = &now
				updates["status"] = string(models.MatchMatched)
				updates["matched_at"] = now
				newly = true
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Match{}).Where("id = ?", m.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		result = &m
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, newly, nil
}

// sideLikeHeld reports whether the given side's current ledger entry for the
// pairing is still a like or super-like. The swipe upsert overwrites actions
// in place, so only the latest row counts; for the directional side the
// context has to point at this pairing's listing.
func sideLikeHeld(tx *gorm.DB, p *pairing, sideA bool) (bool, error) {
	q := tx.Model(&models.Swipe{}).
		Where("action IN ?", []models.SwipeAction{models.ActionLike, models.ActionSuperLike})
	switch {
	case sideA && p.kind == models.MatchKindCandidateOffer:
		q = q.Where("actor_id = ? AND target_id = ? AND target_type IN ?",
			*p.candidateID, *p.offerID,
			[]models.TargetType{models.TargetJobOffer, models.TargetInternshipOffer})
	case sideA:
		q = q.Where("actor_id = ? AND target_id = ? AND target_type = ?",
			*p.animatorID, *p.missionID, models.TargetMission)
	case p.kind == models.MatchKindCandidateOffer:
		q = q.Where("actor_id = ? AND target_id = ? AND target_type = ? AND context_id = ?",
			p.ownerID, *p.candidateID, models.TargetCandidate, *p.offerID)
	default:
		q = q.Where("actor_id = ? AND target_id = ? AND target_type = ? AND context_id = ?",
			p.ownerID, *p.animatorID, models.TargetAnimator, *p.missionID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListForUser returns every match the user participates in, newest first.
func (s *MatchService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Match, error) {
	var matches []models.Match
	err := s.db.WithContext(ctx).
		Where("owner_id = ? OR candidate_id = ? OR animator_id = ?", userID, userID, userID).
		Order("updated_at DESC").
		Find(&matches).Error
	return matches, err
}

// Get returns one match by pairing key, nil when absent.
func (s *MatchService) Get(ctx context.Context, pairingKey string) (*models.Match, error) {
	var m models.Match
	err := s.db.WithContext(ctx).Where("pairing_key = ?", pairingKey).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
