package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	AuthRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejections_total",
			Help: "Total number of unauthorized requests",
		},
		[]string{"reason"},
	)
	HabitCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completions_total",
			Help: "Habit completion toggles by action",
		},
		[]string{"action"},
	)
	AchievementsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "achievements_awarded_total",
			Help: "Achievements automatically awarded to users",
		},
	)
	PushNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_notifications_total",
			Help: "Achievement push notifications by result",
		},
		[]string{"result"},
	)
)

// Register adds every collector to reg. Call once from main.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AuthRejections,
		HabitCompletions,
		AchievementsAwarded,
		PushNotifications,
	)
}
