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

type EngagementRepo interface {
	GetForUpdate(ctx context.Context, tx *gorm.DB, userID, contentID uuid.UUID) (*types.EngagementRecord, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.EngagementRecord, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.EngagementRecord) error
	Save(ctx context.Context, tx *gorm.DB, row *types.EngagementRecord) error
}

type engagementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEngagementRepo(db *gorm.DB, baseLog *logger.Logger) EngagementRepo {
	repoLog := baseLog.With("repo", "EngagementRepo")
	return &engagementRepo{db: db, log: repoLog}
}

func (r *engagementRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, userID, contentID uuid.UUID) (*types.EngagementRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx)
	if transaction.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row types.EngagementRecord
	if err := q.Where("user_id = ? AND content_id = ?", userID, contentID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *engagementRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.EngagementRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EngagementRecord
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *engagementRepo) Create(ctx context.Context, tx *gorm.DB, row *types.EngagementRecord) error {
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

func (r *engagementRepo) Save(ctx context.Context, tx *gorm.DB, row *types.EngagementRecord) error {
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
