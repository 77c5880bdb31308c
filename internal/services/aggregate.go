package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	apperrors "github.com/brightpath-edu/brightpath-backend/internal/pkg/errors"
	"github.com/brightpath-edu/brightpath-backend/internal/repos"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

const (
	aggregateMaxAttempts = 3
	aggregateBackoffBase = 50 * time.Millisecond
)

// CompletionInput carries the optional extras of a completion: a difficulty
// rating folded into the running mean, and section ids the user struggled
// with, unioned into the content's set.
type CompletionInput struct {
	TimeSpentSeconds    int64
	Rating              *float64
	StruggledSectionIDs []string
}

// AggregateService applies conflict-safe incremental updates to the shared
// per-content counters and the per-(user,content) engagement records. Each
// call is one transaction: the stats row is locked for update, both rows are
// rewritten field by field, and both commit or neither does. Same-key updates
// serialize on the row lock; different keys run fully in parallel.
//
// Failures retry with backoff up to a bound and then surface
// apperrors.ErrAnalyticsWrite, which the telemetry dispatcher swallows.
type AggregateService interface {
	RecordView(ctx context.Context, contentID, userID uuid.UUID) error
	RecordCompletion(ctx context.Context, contentID, userID uuid.UUID, in CompletionInput) error
}

// txRunner seams out gorm's Transaction so the updater logic is testable
// against fakes that simulate commit conflicts.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) RunInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type aggregateService struct {
	log       *logger.Logger
	runner    txRunner
	statsRepo repos.ContentStatsRepo
	engRepo   repos.EngagementRepo
	sleep     func(time.Duration)
}

func NewAggregateService(db *gorm.DB, baseLog *logger.Logger, statsRepo repos.ContentStatsRepo, engRepo repos.EngagementRepo) AggregateService {
	return &aggregateService{
		log:       baseLog.With("service", "AggregateService"),
		runner:    &gormTxRunner{db: db},
		statsRepo: statsRepo,
		engRepo:   engRepo,
		sleep:     time.Sleep,
	}
}

func (s *aggregateService) RecordView(ctx context.Context, contentID, userID uuid.UUID) error {
	if contentID == uuid.Nil || userID == uuid.Nil {
		return fmt.Errorf("content and user ids required: %w", apperrors.ErrValidation)
	}
	return s.withRetry(ctx, "record_view", func() error {
		return s.runner.RunInTx(ctx, func(tx *gorm.DB) error {
			now := time.Now().UTC()

			stats, err := s.statsRepo.GetForUpdate(ctx, tx, contentID)
			if err != nil {
				return err
			}
			if stats == nil {
				stats = &types.ContentStats{
					ID:          uuid.New(),
					ContentID:   contentID,
					Views:       1,
					LastUpdated: now,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := s.statsRepo.Create(ctx, tx, stats); err != nil {
					return err
				}
			} else {
				stats.Views++
				stats.LastUpdated = now
				stats.UpdatedAt = now
				if err := s.statsRepo.Save(ctx, tx, stats); err != nil {
					return err
				}
			}

			rec, err := s.engRepo.GetForUpdate(ctx, tx, userID, contentID)
			if err != nil {
				return err
			}
			view := types.Interaction{Timestamp: now, Kind: "view"}
			if rec == nil {
				rec = &types.EngagementRecord{
					ID:        uuid.New(),
					UserID:    userID,
					ContentID: contentID,
					StartedAt: now,
					CreatedAt: now,
					UpdatedAt: now,
				}
				rec.AppendInteraction(view)
				return s.engRepo.Create(ctx, tx, rec)
			}
			rec.AppendInteraction(view)
			rec.UpdatedAt = now
			return s.engRepo.Save(ctx, tx, rec)
		})
	})
}

func (s *aggregateService) RecordCompletion(ctx context.Context, contentID, userID uuid.UUID, in CompletionInput) error {
	if contentID == uuid.Nil || userID == uuid.Nil {
		return fmt.Errorf("content and user ids required: %w", apperrors.ErrValidation)
	}
	if in.TimeSpentSeconds < 0 {
		return fmt.Errorf("negative time spent: %w", apperrors.ErrValidation)
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5) {
		return fmt.Errorf("rating out of range: %w", apperrors.ErrValidation)
	}
	return s.withRetry(ctx, "record_completion", func() error {
		return s.runner.RunInTx(ctx, func(tx *gorm.DB) error {
			now := time.Now().UTC()

			stats, err := s.statsRepo.GetForUpdate(ctx, tx, contentID)
			if err != nil {
				return err
			}
			created := false
			if stats == nil {
				created = true
				stats = &types.ContentStats{
					ID:        uuid.New(),
					ContentID: contentID,
					CreatedAt: now,
				}
			}

			oldCompletions := stats.Completions
			stats.Completions = oldCompletions + 1
			// A completion implies a view; keeps views >= completions.
			if stats.Views < stats.Completions {
				stats.Views = stats.Completions
			}
			stats.AverageTimeSpent = runningMean(stats.AverageTimeSpent, oldCompletions, float64(in.TimeSpentSeconds))

			if in.Rating != nil {
				ratings := stats.RatingList()
				stats.DifficultyRating = runningMean(stats.DifficultyRating, int64(len(ratings)), *in.Rating)
				stats.SetRatingList(append(ratings, *in.Rating))
			}
			if len(in.StruggledSectionIDs) > 0 {
				stats.SetStruggledSectionList(unionStrings(stats.StruggledSectionList(), in.StruggledSectionIDs))
			}
			stats.LastUpdated = now
			stats.UpdatedAt = now

			if created {
				if err := s.statsRepo.Create(ctx, tx, stats); err != nil {
					return err
				}
			} else if err := s.statsRepo.Save(ctx, tx, stats); err != nil {
				return err
			}

			rec, err := s.engRepo.GetForUpdate(ctx, tx, userID, contentID)
			if err != nil {
				return err
			}
			recCreated := false
			if rec == nil {
				recCreated = true
				rec = &types.EngagementRecord{
					ID:        uuid.New(),
					UserID:    userID,
					ContentID: contentID,
					StartedAt: now,
					CreatedAt: now,
				}
			}
			rec.EndedAt = &now
			rec.TimeSpentSeconds += in.TimeSpentSeconds
			rec.ProgressPercent = 100
			rec.UpdatedAt = now
			rec.AppendInteraction(types.Interaction{
				Timestamp: now,
				Kind:      "completion",
				Payload:   map[string]any{"time_spent_seconds": in.TimeSpentSeconds},
			})
			if recCreated {
				return s.engRepo.Create(ctx, tx, rec)
			}
			return s.engRepo.Save(ctx, tx, rec)
		})
	})
}

// withRetry runs one transactional attempt at a time, backing off between
// attempts. After the bound it escalates to ErrAnalyticsWrite; callers on the
// primary path must swallow that, never return it to a user.
func (s *aggregateService) withRetry(ctx context.Context, op string, attempt func() error) error {
	var err error
	for i := 0; i < aggregateMaxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s canceled: %w", op, apperrors.ErrAnalyticsWrite)
			default:
			}
			s.sleep(aggregateBackoffBase << (i - 1))
		}
		err = attempt()
		if err == nil {
			return nil
		}
		if !apperrors.IsRetryable(err) {
			break
		}
		s.log.Debug("aggregate update conflicted, retrying", "op", op, "attempt", i+1, "error", err)
	}
	s.log.Warn("aggregate update failed", "op", op, "error", err)
	return fmt.Errorf("%s: %v: %w", op, err, apperrors.ErrAnalyticsWrite)
}

// runningMean folds one sample into a mean maintained next to its count:
// (old*n + v) / (n+1).
func runningMean(oldMean float64, oldN int64, v float64) float64 {
	return (oldMean*float64(oldN) + v) / float64(oldN+1)
}

func unionStrings(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(extra))
	out := make([]string, 0, len(existing)+len(extra))
	for _, lists := range [][]string{existing, extra} {
		for _, v := range lists {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
