// Package plans holds the static subscription tier catalog: numeric caps and
// feature flags per (user type, tier). Reference data only, never mutated at
// runtime.
package plans

import (
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
)

// Tier is a named subscription level.
type Tier string

const (
	TierFree     Tier = "free"
	TierStarter  Tier = "starter"
	TierPro      Tier = "pro"
	TierBusiness Tier = "business"
)

// Valid reports whether t is a known tier name.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierStarter, TierPro, TierBusiness:
		return true
	}
	return false
}

// LimitKey names one quota-limited counter. Values double as the JSON field
// names exposed by the quota status endpoint.
type LimitKey string

const (
	LimitMissionsPerMonth LimitKey = "missions_published"
	LimitContactsPerMonth LimitKey = "missions_confirmed"
	LimitSuperLikesPerDay LimitKey = "super_likes_today"
	LimitFavorites        LimitKey = "favorites_count"
	LimitAlertsPerMonth   LimitKey = "alerts_sent"
	LimitPostsPerMonth    LimitKey = "posts_published"
	LimitVideosPerMonth   LimitKey = "videos_published"
	LimitSponsoredWeeks   LimitKey = "sponsored_weeks_used"
	LimitSponsoredCards   LimitKey = "sponsored_cards_used"
	LimitPhotos           LimitKey = "photos_count"
)

// Unlimited marks a cap with no numeric bound.
const Unlimited = -1

// Limits maps limit keys to their numeric caps. A missing key means the
// action is not available at all for that tier (cap 0).
type Limits map[LimitKey]int

// Cap returns the numeric cap for key, 0 when the key is absent.
func (l Limits) Cap(key LimitKey) int {
	return l[key]
}

// IsUnlimited reports whether key has no numeric bound.
func (l Limits) IsUnlimited(key LimitKey) bool {
	return l[key] == Unlimited
}

// Plan bundles the caps and feature flags of one tier for one user type.
type Plan struct {
	UserType models.UserType
	Tier     Tier
	Limits   Limits
	Features map[string]bool
}

// usageColumns is the allowlist mapping limit keys to usage_records columns.
// Atomic increments refuse any field outside this map.
var usageColumns = map[LimitKey]string{
	LimitMissionsPerMonth: "missions_published",
	LimitContactsPerMonth: "missions_confirmed",
	LimitSuperLikesPerDay: "super_likes_today",
	LimitFavorites:        "favorites_count",
	LimitAlertsPerMonth:   "alerts_sent",
	LimitPostsPerMonth:    "posts_published",
	LimitVideosPerMonth:   "videos_published",
	LimitSponsoredWeeks:   "sponsored_weeks_used",
	LimitSponsoredCards:   "sponsored_cards_used",
	LimitPhotos:           "photos_count",
}

// UsageColumn returns the usage_records column backing key.
func UsageColumn(key LimitKey) (string, bool) {
	col, ok := usageColumns[key]
	return col, ok
}

// Keys lists every known limit key in a stable order.
func Keys() []LimitKey {
	return []LimitKey{
		LimitMissionsPerMonth,
		LimitContactsPerMonth,
		LimitSuperLikesPerDay,
		LimitFavorites,
		LimitAlertsPerMonth,
		LimitPostsPerMonth,
		LimitVideosPerMonth,
		LimitSponsoredWeeks,
		LimitSponsoredCards,
		LimitPhotos,
	}
}

var catalog = map[models.UserType]map[Tier]Plan{
	models.UserTypeCandidate: {
		TierFree: {
			Limits: Limits{
				LimitSuperLikesPerDay: 1,
				LimitFavorites:        10,
				LimitAlertsPerMonth:   2,
				LimitPhotos:           3,
			},
			Features: map[string]bool{},
		},
		TierStarter: {
			Limits: Limits{
				LimitSuperLikesPerDay: 3,
				LimitFavorites:        30,
				LimitAlertsPerMonth:   5,
				LimitPhotos:           6,
			},
			Features: map[string]bool{"see_who_liked": true},
		},
		TierPro: {
			Limits: Limits{
				LimitSuperLikesPerDay: 5,
				LimitFavorites:        Unlimited,
				LimitAlertsPerMonth:   Unlimited,
				LimitPhotos:           10,
			},
			Features: map[string]bool{"see_who_liked": true, "profile_boost": true},
		},
		TierBusiness: {
			Limits: Limits{
				LimitSuperLikesPerDay: 10,
				LimitFavorites:        Unlimited,
				LimitAlertsPerMonth:   Unlimited,
				LimitPhotos:           Unlimited,
			},
			Features: map[string]bool{"see_who_liked": true, "profile_boost": true, "priority_support": true},
		},
	},
	models.UserTypeEmployer: {
		TierFree: {
			Limits: Limits{
				LimitSuperLikesPerDay: 1,
				LimitFavorites:        5,
				LimitPostsPerMonth:    1,
				LimitPhotos:           3,
			},
			Features: map[string]bool{},
		},
		TierStarter: {
			Limits: Limits{
				LimitSuperLikesPerDay: 3,
				LimitFavorites:        20,
				LimitPostsPerMonth:    4,
				LimitVideosPerMonth:   1,
				LimitSponsoredCards:   1,
				LimitPhotos:           6,
			},
			Features: map[string]bool{"see_who_liked": true},
		},
		TierPro: {
			Limits: Limits{
				LimitSuperLikesPerDay: 5,
				LimitFavorites:        Unlimited,
				LimitPostsPerMonth:    10,
				LimitVideosPerMonth:   4,
				LimitSponsoredWeeks:   1,
				LimitSponsoredCards:   4,
				LimitPhotos:           10,
			},
			Features: map[string]bool{"see_who_liked": true, "profile_boost": true},
		},
		TierBusiness: {
			Limits: Limits{
				LimitSuperLikesPerDay: 10,
				LimitFavorites:        Unlimited,
				LimitPostsPerMonth:    Unlimited,
				LimitVideosPerMonth:   Unlimited,
				LimitSponsoredWeeks:   4,
				LimitSponsoredCards:   Unlimited,
				LimitPhotos:           Unlimited,
			},
			Features: map[string]bool{"see_who_liked": true, "profile_boost": true, "priority_support": true},
		},
	},
	models.UserTypeLaboratory: {
		TierFree: {
			Limits: Limits{
				LimitMissionsPerMonth: 1,
				LimitContactsPerMonth: 0,
				LimitSuperLikesPerDay: 1,
				LimitFavorites:        5,
			},
			Features: map[string]bool{},
		},
		TierStarter: {
			Limits: Limits{
				LimitMissionsPerMonth: 3,
				LimitContactsPerMonth: 3,
				LimitSuperLikesPerDay: 3,
				LimitFavorites:        20,
			},
			Features: map[string]bool{"see_who_liked": true},
		},
		TierPro: {
			Limits: Limits{
				LimitMissionsPerMonth: 10,
				LimitContactsPerMonth: 10,
				LimitSuperLikesPerDay: 5,
				LimitFavorites:        Unlimited,
			},
			Features: map[string]bool{"see_who_liked": true, "profile_boost": true},
		},
		TierBusiness: {
			Limits: Limits{
				LimitMissionsPerMonth: Unlimited,
				LimitContactsPerMonth: Unlimited,
				LimitSuperLikesPerDay: 10,
				LimitFavorites:        Unlimited,
			},
			Features: map[string]bool{"see_who_liked": true, "profile_boost": true, "priority_support": true},
		},
	},
	models.UserTypeAnimator: {
		TierFree: {
			Limits: Limits{
				LimitSuperLikesPerDay: 1,
				LimitFavorites:        10,
				LimitAlertsPerMonth:   2,
				LimitPhotos:           3,
			},
			Features: map[string]bool{},
		},
		TierStarter: {
			Limits: Limits{
				LimitSuperLikesPerDay: 3,
				LimitFavorites:        30,
				LimitAlertsPerMonth:   5,
				LimitPhotos:           6,
			},
			Features: map[string]bool{"see_who_liked": true},
		},
		TierPro: {
			Limits: Limits{
				LimitSuperLikesPerDay: 5,
				LimitFavorites:        Unlimited,
				LimitAlertsPerMonth:   Unlimited,
				LimitPhotos:           10,
			},
			Features: map[string]bool{"see_who_liked": true, "profile_boost": true},
		},
		TierBusiness: {
			Limits: Limits{
				LimitSuperLikesPerDay: 10,
				LimitFavorites:        Unlimited,
				LimitAlertsPerMonth:   Unlimited,
				LimitPhotos:           Unlimited,
			},
			Features: map[string]bool{"see_who_liked": true, "profile_boost": true, "priority_support": true},
		},
	},
}

// Resolve returns the plan for (userType, tier). Unknown tiers fall back to
// the user type's free plan so a stale or bad tier name never grants more
// than free access.
func Resolve(userType models.UserType, tier Tier) Plan {
	tiers, ok := catalog[userType]
	if !ok {
		return Plan{UserType: userType, Tier: TierFree, Limits: Limits{}, Features: map[string]bool{}}
	}
	plan, ok := tiers[tier]
	if !ok {
		plan = tiers[TierFree]
		tier = TierFree
	}
	plan.UserType = userType
	plan.Tier = tier
	return plan
}
