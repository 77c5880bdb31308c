package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-edu/brightpath-backend/internal/analytics"
)

// UserAnalytics is recomputed per query from the event log; it is never
// persisted.
type UserAnalytics struct {
	UserID           uuid.UUID                 `json:"user_id"`
	TotalQuestions   int                       `json:"total_questions"`
	DailyStreak      int                       `json:"daily_streak"`
	TotalDaysSpent   int                       `json:"total_days_spent"`
	ActivityTimeline []analytics.TimelineEntry `json:"activity_timeline"`
	DailyBreakdown   map[string]int            `json:"daily_breakdown"`
	GeneratedAt      time.Time                 `json:"generated_at"`
}

// DashboardAnalytics sections are all optional: a sub-source failure leaves
// its section nil rather than failing the response.
type DashboardAnalytics struct {
	UserID         uuid.UUID           `json:"user_id"`
	Overview       *DashboardOverview  `json:"overview,omitempty"`
	Learning       *DashboardLearning  `json:"learning,omitempty"`
	Trends         *DashboardTrends    `json:"trends,omitempty"`
	Insights       *DashboardInsights  `json:"insights,omitempty"`
	RecentActivity []DashboardActivity `json:"recent_activity"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

type DashboardOverview struct {
	TotalQuestions int `json:"total_questions"`
	DailyStreak    int `json:"daily_streak"`
	TotalDaysSpent int `json:"total_days_spent"`
}

type DashboardLearning struct {
	ContentViewed        int     `json:"content_viewed"`
	ContentCompleted     int     `json:"content_completed"`
	TotalTimeSpent       int64   `json:"total_time_spent_seconds"`
	AverageProgress      float64 `json:"average_progress"`
	AssignmentsTotal     int     `json:"assignments_total"`
	AssignmentsSubmitted int     `json:"assignments_submitted"`
	AverageScore         float64 `json:"average_score"`
}

type DashboardTrends struct {
	ActivityTimeline []analytics.TimelineEntry `json:"activity_timeline"`
	EventsThisWeek   int                       `json:"events_this_week"`
	EventsLastWeek   int                       `json:"events_last_week"`
	GrowthScore      float64                   `json:"growth_score"`
	EngagementTrend  string                    `json:"engagement_trend"`
}

type DashboardInsights struct {
	StruggledSections []string `json:"struggled_sections"`
	AverageDifficulty float64  `json:"average_difficulty"`
}

type DashboardActivity struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}
