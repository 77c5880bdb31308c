package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

// EventFilter narrows a per-user event query. From/To bound OccurredAt as
// [From, To); Limit and Offset page the descending result.
type EventFilter struct {
	Type   string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// ActivityEventRepo is the append-only event log. There is deliberately no
// update or delete method: retention is out of scope and rows are immutable.
type ActivityEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.ActivityEvent) ([]*types.ActivityEvent, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter EventFilter) ([]*types.ActivityEvent, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type activityEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityEventRepo(db *gorm.DB, baseLog *logger.Logger) ActivityEventRepo {
	repoLog := baseLog.With("repo", "ActivityEventRepo")
	return &activityEventRepo{db: db, log: repoLog}
}

func (r *activityEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.ActivityEvent) ([]*types.ActivityEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(events) == 0 {
		return []*types.ActivityEvent{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *activityEventRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter EventFilter) ([]*types.ActivityEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ActivityEvent
	if userID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		q = q.Where("occurred_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("occurred_at < ?", filter.To.UTC())
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	if err := q.Order("occurred_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityEventRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if userID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.ActivityEvent{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
