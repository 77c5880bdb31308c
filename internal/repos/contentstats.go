package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

type ContentStatsRepo interface {
	// GetForUpdate row-locks the stats row for the length of the enclosing
	// transaction; returns nil when the content has no row yet.
	GetForUpdate(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (*types.ContentStats, error)
	GetByContentID(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (*types.ContentStats, error)
	GetByContentIDs(ctx context.Context, tx *gorm.DB, contentIDs []uuid.UUID) ([]*types.ContentStats, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.ContentStats) error
	Save(ctx context.Context, tx *gorm.DB, row *types.ContentStats) error
}

type contentStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentStatsRepo(db *gorm.DB, baseLog *logger.Logger) ContentStatsRepo {
	repoLog := baseLog.With("repo", "ContentStatsRepo")
	return &contentStatsRepo{db: db, log: repoLog}
}

func (r *contentStatsRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (*types.ContentStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx)
	// sqlite has no row locks; its single writer serializes for us.
	if transaction.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row types.ContentStats
	if err := q.Where("content_id = ?", contentID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *contentStatsRepo) GetByContentID(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (*types.ContentStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.ContentStats
	if err := transaction.WithContext(ctx).
		Where("content_id = ?", contentID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *contentStatsRepo) GetByContentIDs(ctx context.Context, tx *gorm.DB, contentIDs []uuid.UUID) ([]*types.ContentStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ContentStats
	if len(contentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("content_id IN ?", contentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentStatsRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ContentStats) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *contentStatsRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ContentStats) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	return nil
}
