package services

import (
	"context"
	"testing"

	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFormsRegardlessOfOrder(t *testing.T) {
	ctx := context.Background()

	// Candidate first, employer second.
	t.Run("candidate then employer", func(t *testing.T) {
		db := setupTestDB(t)
		swipes, matches, _ := newSwipeStack(db)
		employer := makeUser(t, db, models.UserTypeEmployer)
		candidate := makeUser(t, db, models.UserTypeCandidate)
		offer := makeOffer(t, db, employer.ID)

		first, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionLike, nil)
		require.NoError(t, err)
		assert.Equal(t, OutcomeLiked, first.Outcome)

		second, err := swipes.RecordSwipe(ctx, employer.ID, models.TargetCandidate, candidate.ID, models.ActionLike, &offer.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeMatched, second.Outcome)
		assert.True(t, second.NewMatch)

		m, err := matches.Get(ctx, models.OfferPairingKey(offer.ID, candidate.ID))
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, models.MatchMatched, m.Status)
		assert.NotNil(t, m.MatchedAt)
	})

	// Employer first, candidate second: same single row, same outcome.
	t.Run("employer then candidate", func(t *testing.T) {
		db := setupTestDB(t)
		swipes, matches, _ := newSwipeStack(db)
		employer := makeUser(t, db, models.UserTypeEmployer)
		candidate := makeUser(t, db, models.UserTypeCandidate)
		offer := makeOffer(t, db, employer.ID)

		first, err := swipes.RecordSwipe(ctx, employer.ID, models.TargetCandidate, candidate.ID, models.ActionLike, &offer.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeLiked, first.Outcome)

		second, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionLike, nil)
		require.NoError(t, err)
		assert.Equal(t, OutcomeMatched, second.Outcome)

		var count int64
		db.Model(&models.Match{}).Count(&count)
		assert.Equal(t, int64(1), count)

		m, err := matches.Get(ctx, models.OfferPairingKey(offer.ID, candidate.ID))
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.True(t, m.SideALiked)
		assert.True(t, m.SideBLiked)
	})
}

func TestMatchTransitionHappensOnce(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	swipes, _, _ := newSwipeStack(db)
	employer := makeUser(t, db, models.UserTypeEmployer)
	candidate := makeUser(t, db, models.UserTypeCandidate)
	offer := makeOffer(t, db, employer.ID)

	_, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionLike, nil)
	require.NoError(t, err)
	matched, err := swipes.RecordSwipe(ctx, employer.ID, models.TargetCandidate, candidate.ID, models.ActionLike, &offer.ID)
	require.NoError(t, err)
	require.True(t, matched.NewMatch)

	// A repeat like folds into the existing row and must not re-announce.
	repeat, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionLike, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLiked, repeat.Outcome)
	assert.False(t, repeat.NewMatch)
}

func TestMatchSurvivesLaterDislike(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	swipes, matches, _ := newSwipeStack(db)
	employer := makeUser(t, db, models.UserTypeEmployer)
	candidate := makeUser(t, db, models.UserTypeCandidate)
	offer := makeOffer(t, db, employer.ID)

	_, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionLike, nil)
	require.NoError(t, err)
	_, err = swipes.RecordSwipe(ctx, employer.ID, models.TargetCandidate, candidate.ID, models.ActionLike, &offer.ID)
	require.NoError(t, err)

	// The candidate changes their mind; the ledger records it but the match
	// does not dissolve.
	result, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionDislike, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, result.Outcome)

	m, err := matches.Get(ctx, models.OfferPairingKey(offer.ID, candidate.ID))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, models.MatchMatched, m.Status)
}

func TestWithdrawnLikeBlocksMatch(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	swipes, matches, _ := newSwipeStack(db)
	employer := makeUser(t, db, models.UserTypeEmployer)
	candidate := makeUser(t, db, models.UserTypeCandidate)
	offer := makeOffer(t, db, employer.ID)

	_, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionLike, nil)
	require.NoError(t, err)

	// The candidate withdraws before the employer answers; the ledger now
	// says dislike even though the pairing row saw the earlier like.
	_, err = swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionDislike, nil)
	require.NoError(t, err)

	result, err := swipes.RecordSwipe(ctx, employer.ID, models.TargetCandidate, candidate.ID, models.ActionLike, &offer.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLiked, result.Outcome)
	assert.False(t, result.NewMatch)

	m, err := matches.Get(ctx, models.OfferPairingKey(offer.ID, candidate.ID))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, models.MatchPending, m.Status)
	assert.False(t, m.SideALiked)
	assert.True(t, m.SideBLiked)

	// Liking again completes the pair.
	again, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionLike, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMatched, again.Outcome)
	assert.True(t, again.NewMatch)
}

func TestMissionAnimatorPairing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	swipes, matches, _ := newSwipeStack(db)
	lab := makeUser(t, db, models.UserTypeLaboratory)
	animator := makeUser(t, db, models.UserTypeAnimator)
	mission := makeMission(t, db, lab.ID, 4)

	_, err := swipes.RecordSwipe(ctx, animator.ID, models.TargetMission, mission.ID, models.ActionLike, nil)
	require.NoError(t, err)

	result, err := swipes.RecordSwipe(ctx, lab.ID, models.TargetAnimator, animator.ID, models.ActionLike, &mission.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMatched, result.Outcome)

	m, err := matches.Get(ctx, models.MissionPairingKey(mission.ID, animator.ID))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, models.MatchKindMissionAnimator, m.Kind)
	assert.Equal(t, lab.ID, m.OwnerID)
}

func TestAnimatorSwipeRejectsForeignMission(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	swipes, _, _ := newSwipeStack(db)
	lab := makeUser(t, db, models.UserTypeLaboratory)
	otherLab := makeUser(t, db, models.UserTypeLaboratory)
	animator := makeUser(t, db, models.UserTypeAnimator)
	mission := makeMission(t, db, lab.ID, 3)

	_, err := swipes.RecordSwipe(ctx, otherLab.ID, models.TargetAnimator, animator.ID, models.ActionLike, &mission.ID)
	assert.ErrorIs(t, err, ErrNotMissionOwner)
}

func TestSuperLikeFlagIsSticky(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	swipes, matches, _ := newSwipeStack(db)
	employer := makeUser(t, db, models.UserTypeEmployer)
	candidate := makeUser(t, db, models.UserTypeCandidate)
	offer := makeOffer(t, db, employer.ID)

	_, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionSuperLike, nil)
	require.NoError(t, err)
	_, err = swipes.RecordSwipe(ctx, employer.ID, models.TargetCandidate, candidate.ID, models.ActionLike, &offer.ID)
	require.NoError(t, err)

	m, err := matches.Get(ctx, models.OfferPairingKey(offer.ID, candidate.ID))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.IsSuperLike)
}

func TestListForUserCoversBothSides(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	swipes, matches, _ := newSwipeStack(db)
	employer := makeUser(t, db, models.UserTypeEmployer)
	candidate := makeUser(t, db, models.UserTypeCandidate)
	offer := makeOffer(t, db, employer.ID)

	_, err := swipes.RecordSwipe(ctx, candidate.ID, models.TargetJobOffer, offer.ID, models.ActionLike, nil)
	require.NoError(t, err)
	_, err = swipes.RecordSwipe(ctx, employer.ID, models.TargetCandidate, candidate.ID, models.ActionLike, &offer.ID)
	require.NoError(t, err)

	forCandidate, err := matches.ListForUser(ctx, candidate.ID)
	require.NoError(t, err)
	forEmployer, err := matches.ListForUser(ctx, employer.ID)
	require.NoError(t, err)
	assert.Len(t, forCandidate, 1)
	assert.Len(t, forEmployer, 1)
	assert.Equal(t, forCandidate[0].ID, forEmployer[0].ID)
}
