// Package metrics defines the Prometheus collectors for the matching and
// quota engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SwipesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmatch_swipes_recorded_total",
		Help: "Swipes recorded, by action.",
	}, []string{"action"})

	MatchesFormed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmatch_matches_formed_total",
		Help: "Pairings that transitioned to matched, by kind.",
	}, []string{"kind"})

	QuotaDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmatch_quota_denials_total",
		Help: "Actions denied by the quota gate, by limit key.",
	}, []string{"limit_key"})

	MissionFees = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmatch_mission_fees_total",
		Help: "Mission confirmation fees created, by status.",
	}, []string{"status"})
)
