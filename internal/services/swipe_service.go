package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/cache"
	"github.com/pharmatchapp/pharmatch-backend/internal/metrics"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/notify"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SwipeOutcome is what a recorded swipe amounted to.
type SwipeOutcome string

const (
	OutcomeMatched      SwipeOutcome = "matched"
	OutcomeLiked        SwipeOutcome = "liked"
	OutcomePassed       SwipeOutcome = "passed"
	OutcomeLimitReached SwipeOutcome = "limit_reached"
)

// SwipeResult is the full answer to one swipe: the stored row, the match it
// produced (if any) and the super-like budget when one was spent.
type SwipeResult struct {
	Outcome    SwipeOutcome   `json:"outcome"`
	Swipe      *models.Swipe  `json:"swipe,omitempty"`
	Match      *models.Match  `json:"match,omitempty"`
	NewMatch   bool           `json:"new_match"`
	SuperLikes *LimitStatus   `json:"super_likes,omitempty"`
}

// SwipeService is the swipe ledger plus the orchestration around it: quota
// spend for super-likes, match reconciliation, cache upkeep and
// notifications.
type SwipeService struct {
	db       *gorm.DB
	cache    *cache.RedisCache
	quota    *QuotaService
	matches  *MatchService
	notifier notify.Notifier
	now      func() time.Time
}

func NewSwipeService(db *gorm.DB, rc *cache.RedisCache, quota *QuotaService, matches *MatchService, notifier notify.Notifier) *SwipeService {
	return &SwipeService{
		db:       db,
		cache:    rc,
		quota:    quota,
		matches:  matches,
		notifier: notifier,
		now:      time.Now,
	}
}

// RecordSwipe upserts the directional preference and runs the downstream
// flow. The ledger write itself is idempotent: re-swiping the same target
// overwrites the previous action, it never accumulates rows.
func (s *SwipeService) RecordSwipe(ctx context.Context, actorID uuid.UUID, targetType models.TargetType, targetID uuid.UUID, action models.SwipeAction, contextID *uuid.UUID) (*SwipeResult, error) {
	if !action.Valid() {
		return nil, ErrInvalidAction
	}
	if !targetType.Valid() {
		return nil, ErrInvalidTargetType
	}
	if (targetType == models.TargetCandidate || targetType == models.TargetAnimator) && actorID == targetID {
		return nil, ErrSelfSwipe
	}

	var actor models.User
	if err := s.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err != nil {
		return nil, err
	}

	result := &SwipeResult{}

	if action == models.ActionSuperLike {
		status, err := s.quota.ConsumeSuperLike(ctx, actorID)
		if err != nil {
			return nil, err
		}
		result.SuperLikes = status
		if !status.Allowed {
			result.Outcome = OutcomeLimitReached
			return result, nil
		}
	}

	swipe, err := s.upsert(ctx, actorID, targetType, targetID, action, contextID)
	if err != nil {
		return nil, err
	}
	result.Swipe = swipe
	metrics.SwipesRecorded.WithLabelValues(string(action)).Inc()
	s.touchCache(ctx, actorID, targetID)

	if !action.Positive() {
		result.Outcome = OutcomePassed
		return result, nil
	}

	match, newly, err := s.matches.OnLike(ctx, &actor, swipe)
	if err != nil {
		return nil, err
	}
	result.Match = match
	result.NewMatch = newly

	switch {
	case newly:
		result.Outcome = OutcomeMatched
		metrics.MatchesFormed.WithLabelValues(string(match.Kind)).Inc()
		s.notifyMatch(ctx, actorID, match)
	default:
		result.Outcome = OutcomeLiked
		if action == models.ActionSuperLike && match != nil {
			s.notifySuperLike(ctx, actorID, match)
		}
	}
	return result, nil
}

func (s *SwipeService) upsert(ctx context.Context, actorID uuid.UUID, targetType models.TargetType, targetID uuid.UUID, action models.SwipeAction, contextID *uuid.UUID) (*models.Swipe, error) {
	swipe := models.Swipe{
		ID:          uuid.New(),
		ActorID:     actorID,
		TargetType:  targetType,
		TargetID:    targetID,
		Action:      action,
		IsSuperLike: action == models.ActionSuperLike,
		ContextID:   contextID,
	}
	if swipe.IsSuperLike {
		now := s.now().UTC()
		swipe.SuperLikedAt = &now
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "actor_id"}, {Name: "target_type"}, {Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"action", "is_super_like", "super_liked_at", "context_id", "updated_at",
		}),
	}).Create(&swipe).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the canonical row (the original ID and
	// created_at survive an overwrite).
	var stored models.Swipe
	err = s.db.WithContext(ctx).
		Where("actor_id = ? AND target_type = ? AND target_id = ?", actorID, targetType, targetID).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *SwipeService) touchCache(ctx context.Context, actorID, targetID uuid.UUID) {
	if s.cache == nil {
		return
	}
	day := models.Day(s.now())
	if _, err := s.cache.IncrSwipeCount(ctx, actorID, day); err != nil {
		slog.Warn("swipe count cache update failed", "error", err, "user_id", actorID)
	}
	if err := s.cache.AddSwipedTarget(ctx, actorID, day, targetID); err != nil {
		slog.Warn("swiped target cache update failed", "error", err, "user_id", actorID)
	}
}

// FeedExclusions returns the target IDs the user already swiped today so the
// client can filter its deck. Served from Redis, rebuilt from the ledger on
// a miss.
func (s *SwipeService) FeedExclusions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	now := s.now()
	day := models.Day(now)
	if s.cache != nil {
		ids, err := s.cache.SwipedTargets(ctx, userID, day)
		if err != nil {
			slog.Warn("swiped target cache read failed", "error", err, "user_id", userID)
		} else if len(ids) > 0 {
			return ids, nil
		}
	}

	start := startOfDay(now)
	var swipes []models.Swipe
	if err := s.db.WithContext(ctx).
		Select("target_id").
		Where("actor_id = ? AND updated_at >= ?", userID, start).
		Find(&swipes).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(swipes))
	for _, sw := range swipes {
		ids = append(ids, sw.TargetID.String())
		if s.cache != nil {
			_ = s.cache.AddSwipedTarget(ctx, userID, day, sw.TargetID)
		}
	}
	return ids, nil
}

// startOfDay returns midnight of t's calendar date in t's own zone, the same
// date the cache keys carry.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *SwipeService) notifyMatch(ctx context.Context, actorID uuid.UUID, match *models.Match) {
	data := map[string]any{"match_id": match.ID.String(), "kind": string(match.Kind)}
	s.notifier.Notify(ctx, actorID, notify.TypeNewMatch, "It's a match!", "You have a new match.", data)
	if other := matchCounterpart(match, actorID); other != uuid.Nil {
		s.notifier.Notify(ctx, other, notify.TypeNewMatch, "It's a match!", "You have a new match.", data)
	}
}

func (s *SwipeService) notifySuperLike(ctx context.Context, actorID uuid.UUID, match *models.Match) {
	if other := matchCounterpart(match, actorID); other != uuid.Nil {
		s.notifier.Notify(ctx, other, notify.TypeSuperLikeReceived,
			"Someone is very interested", "You received a super-like.",
			map[string]any{"match_id": match.ID.String()})
	}
}

// matchCounterpart returns the participant on the other side of the match
// from userID.
func matchCounterpart(match *models.Match, userID uuid.UUID) uuid.UUID {
	if match.OwnerID != userID {
		return match.OwnerID
	}
	if match.CandidateID != nil {
		return *match.CandidateID
	}
	if match.AnimatorID != nil {
		return *match.AnimatorID
	}
	return uuid.Nil
}
