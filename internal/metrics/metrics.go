package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitness_sessions_completed_total",
			Help: "Total number of completed fitness sessions",
		},
		[]string{"type"},
	)
	LevelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fitness_level_ups_total",
			Help: "Total number of user level-ups",
		},
	)
	MissionsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitness_missions_completed_total",
			Help: "Total number of mission completions",
		},
		[]string{"source"},
	)
	LeaderboardRebuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitness_leaderboard_rebuild_duration_seconds",
			Help:    "Duration of leaderboard rebuilds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type", "category"},
	)
	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitness_notifications_total",
			Help: "Push notifications by outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// Register adds the domain collectors to reg. Call once from main.go.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		SessionsCompleted,
		LevelUps,
		MissionsCompleted,
		LeaderboardRebuildDuration,
		NotificationsSent,
	)
}

// ObserveRebuild records the time since start for a leaderboard rebuild.
func ObserveRebuild(lbType, category string, start time.Time) {
	LeaderboardRebuildDuration.WithLabelValues(lbType, category).Observe(time.Since(start).Seconds())
}
