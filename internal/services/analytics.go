package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brightpath-edu/brightpath-backend/internal/analytics"
	"github.com/brightpath-edu/brightpath-backend/internal/clients/redis"
	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	apperrors "github.com/brightpath-edu/brightpath-backend/internal/pkg/errors"
	"github.com/brightpath-edu/brightpath-backend/internal/repos"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

const (
	analyticsCacheTTL   = 5 * time.Minute
	recentActivityLimit = 10
)

// AnalyticsService answers the user-analytics and dashboard queries by
// composing the event log, the calculators and the aggregate stores. It is a
// read-only consumer of everything it touches and may observe writes one
// in-flight transaction late.
type AnalyticsService interface {
	GetUserAnalytics(ctx context.Context, userID uuid.UUID) (*types.UserAnalytics, error)
	GetDashboardAnalytics(ctx context.Context, userID uuid.UUID) (*types.DashboardAnalytics, error)
	RefreshUserAnalytics(ctx context.Context, userID uuid.UUID) (*types.UserAnalytics, error)
}

type analyticsService struct {
	log            *logger.Logger
	eventRepo      repos.ActivityEventRepo
	engRepo        repos.EngagementRepo
	statsRepo      repos.ContentStatsRepo
	assignmentRepo repos.AssignmentRepo
	cache          redis.Cache
	now            func() time.Time
}

// NewAnalyticsService builds the facade. cache may be nil; memoization is
// then skipped entirely.
func NewAnalyticsService(
	baseLog *logger.Logger,
	eventRepo repos.ActivityEventRepo,
	engRepo repos.EngagementRepo,
	statsRepo repos.ContentStatsRepo,
	assignmentRepo repos.AssignmentRepo,
	cache redis.Cache,
) AnalyticsService {
	return &analyticsService{
		log:            baseLog.With("service", "AnalyticsService"),
		eventRepo:      eventRepo,
		engRepo:        engRepo,
		statsRepo:      statsRepo,
		assignmentRepo: assignmentRepo,
		cache:          cache,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// analyticsCacheKey is scoped to the UTC day: streak and breakdown are
// day-relative, so a copy memoized before midnight must miss after it.
func analyticsCacheKey(userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("analytics:user:%s:%s", userID, analytics.DayKey(now))
}

func (s *analyticsService) GetUserAnalytics(ctx context.Context, userID uuid.UUID) (*types.UserAnalytics, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", apperrors.ErrValidation)
	}
	if s.cache != nil {
		var cached types.UserAnalytics
		hit, err := s.cache.GetJSON(ctx, analyticsCacheKey(userID, s.now()), &cached)
		if err != nil {
			s.log.Debug("analytics cache read failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}
	return s.computeUserAnalytics(ctx, userID)
}

// RefreshUserAnalytics recomputes ignoring any memoized copy and rewrites it.
func (s *analyticsService) RefreshUserAnalytics(ctx context.Context, userID uuid.UUID) (*types.UserAnalytics, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", apperrors.ErrValidation)
	}
	return s.computeUserAnalytics(ctx, userID)
}

func (s *analyticsService) computeUserAnalytics(ctx context.Context, userID uuid.UUID) (*types.UserAnalytics, error) {
	rows, err := s.eventRepo.GetByUserID(ctx, nil, userID, repos.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("load events: %w", apperrors.ErrStorage)
	}

	now := s.now()
	events := toCalcEvents(rows)
	times := eventTimes(rows)

	out := &types.UserAnalytics{
		UserID:           userID,
		TotalQuestions:   analytics.CountType(events, types.EventTypeChat),
		DailyStreak:      analytics.CurrentStreak(analytics.DistinctDays(times), now),
		TotalDaysSpent:   len(analytics.DistinctDays(times)),
		ActivityTimeline: analytics.Timeline(times),
		DailyBreakdown:   analytics.DailyBreakdown(events, now),
		GeneratedAt:      now,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, analyticsCacheKey(userID, now), out, analyticsCacheTTL); err != nil {
			s.log.Debug("analytics cache write failed", "error", err)
		}
	}
	return out, nil
}

// GetDashboardAnalytics fans out to the sub-sources concurrently and degrades
// per section: a failed source leaves its section nil, it never fails the
// whole response.
func (s *analyticsService) GetDashboardAnalytics(ctx context.Context, userID uuid.UUID) (*types.DashboardAnalytics, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", apperrors.ErrValidation)
	}

	var (
		eventRows       []*types.ActivityEvent
		eventsOK        bool
		engagements     []*types.EngagementRecord
		statsRows       []*types.ContentStats
		engagementsOK   bool
		submissions     []*types.AssignmentSubmission
		assignmentCount int64
		assignmentsOK   bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.eventRepo.GetByUserID(gctx, nil, userID, repos.EventFilter{})
		if err != nil {
			s.log.Warn("dashboard events unavailable", "error", err)
			return nil
		}
		eventRows, eventsOK = rows, true
		return nil
	})
	g.Go(func() error {
		recs, err := s.engRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			s.log.Warn("dashboard engagement unavailable", "error", err)
			return nil
		}
		contentIDs := make([]uuid.UUID, 0, len(recs))
		for _, rec := range recs {
			contentIDs = append(contentIDs, rec.ContentID)
		}
		stats, err := s.statsRepo.GetByContentIDs(gctx, nil, contentIDs)
		if err != nil {
			s.log.Warn("dashboard content stats unavailable", "error", err)
			stats = nil
		}
		engagements, statsRows, engagementsOK = recs, stats, true
		return nil
	})
	g.Go(func() error {
		subs, err := s.assignmentRepo.GetSubmissionsByUserID(gctx, nil, userID)
		if err != nil {
			s.log.Warn("dashboard submissions unavailable", "error", err)
			return nil
		}
		total, err := s.assignmentRepo.Count(gctx, nil)
		if err != nil {
			s.log.Warn("dashboard assignment count unavailable", "error", err)
			return nil
		}
		submissions, assignmentCount, assignmentsOK = subs, total, true
		return nil
	})
	_ = g.Wait()

	now := s.now()
	out := &types.DashboardAnalytics{UserID: userID, GeneratedAt: now}

	if eventsOK {
		events := toCalcEvents(eventRows)
		times := eventTimes(eventRows)
		days := analytics.DistinctDays(times)

		out.Overview = &types.DashboardOverview{
			TotalQuestions: analytics.CountType(events, types.EventTypeChat),
			DailyStreak:    analytics.CurrentStreak(days, now),
			TotalDaysSpent: len(days),
		}

		thisWeek, lastWeek := weeklyCounts(times, now)
		trends := &types.DashboardTrends{
			ActivityTimeline: analytics.Timeline(times),
			EventsThisWeek:   thisWeek,
			EventsLastWeek:   lastWeek,
			EngagementTrend:  analytics.ClassifyTrend(thisWeek, lastWeek),
		}
		growth := analytics.GrowthInputs{EventsThisWeek: thisWeek, EventsLastWeek: lastWeek}
		if assignmentsOK {
			growth.Accuracy = submissionAccuracy(submissions)
			growth.CompletionRatio = completionRatio(len(submissions), assignmentCount)
		}
		trends.GrowthScore = analytics.GrowthScore(growth)
		out.Trends = trends

		recent := make([]types.DashboardActivity, 0, recentActivityLimit)
		for _, row := range eventRows {
			if len(recent) == recentActivityLimit {
				break
			}
			recent = append(recent, types.DashboardActivity{Type: row.Type, OccurredAt: row.OccurredAt})
		}
		out.RecentActivity = recent
	}

	if engagementsOK {
		learning := &types.DashboardLearning{ContentViewed: len(engagements)}
		var progressSum float64
		for _, rec := range engagements {
			learning.TotalTimeSpent += rec.TimeSpentSeconds
			progressSum += rec.ProgressPercent
			if rec.ProgressPercent >= 100 {
				learning.ContentCompleted++
			}
		}
		if len(engagements) > 0 {
			learning.AverageProgress = progressSum / float64(len(engagements))
		}
		if assignmentsOK {
			learning.AssignmentsTotal = int(assignmentCount)
			learning.AssignmentsSubmitted = len(submissions)
			learning.AverageScore = 100 * submissionAccuracy(submissions)
		}
		out.Learning = learning

		insights := &types.DashboardInsights{StruggledSections: []string{}}
		var difficultySum float64
		rated := 0
		for _, stat := range statsRows {
			insights.StruggledSections = unionStrings(insights.StruggledSections, stat.StruggledSectionList())
			if stat.DifficultyRating > 0 {
				difficultySum += stat.DifficultyRating
				rated++
			}
		}
		if rated > 0 {
			insights.AverageDifficulty = difficultySum / float64(rated)
		}
		out.Insights = insights
	}

	if out.RecentActivity == nil {
		out.RecentActivity = []types.DashboardActivity{}
	}
	return out, nil
}

func toCalcEvents(rows []*types.ActivityEvent) []analytics.Event {
	out := make([]analytics.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.Event{Type: row.Type, At: row.OccurredAt})
	}
	return out
}

func eventTimes(rows []*types.ActivityEvent) []time.Time {
	out := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.OccurredAt)
	}
	return out
}

// weeklyCounts splits the trailing 14 UTC days into this week (today and the
// 6 days before) and the 7 days before that.
func weeklyCounts(times []time.Time, now time.Time) (thisWeek, lastWeek int) {
	dayStart := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	thisStart := dayStart.AddDate(0, 0, -6)
	lastStart := dayStart.AddDate(0, 0, -13)
	for _, t := range times {
		t = t.UTC()
		switch {
		case !t.Before(thisStart):
			thisWeek++
		case !t.Before(lastStart):
			lastWeek++
		}
	}
	return thisWeek, lastWeek
}

func submissionAccuracy(subs []*types.AssignmentSubmission) float64 {
	var sum float64
	graded := 0
	for _, sub := range subs {
		if sub.Status == types.SubmissionStatusGraded && sub.Score != nil {
			sum += *sub.Score
			graded++
		}
	}
	if graded == 0 {
		return 0
	}
	acc := sum / float64(graded) / 100
	if acc < 0 {
		return 0
	}
	if acc > 1 {
		return 1
	}
	return acc
}

func completionRatio(submitted int, total int64) float64 {
	if total <= 0 {
		return 0
	}
	ratio := float64(submitted) / float64(total)
	if ratio > 1 {
		return 1
	}
	return ratio
}
