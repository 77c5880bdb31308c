package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Assignment) ([]*types.Assignment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Assignment, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CreateSubmission(ctx context.Context, tx *gorm.DB, row *types.AssignmentSubmission) error
	GetSubmission(ctx context.Context, tx *gorm.DB, assignmentID, userID uuid.UUID) (*types.AssignmentSubmission, error)
	GetSubmissionsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AssignmentSubmission, error)
	SaveSubmission(ctx context.Context, tx *gorm.DB, row *types.AssignmentSubmission) error
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (r *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Assignment) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Assignment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Assignment
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *assignmentRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Assignment{})
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var results []*types.Assignment
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Assignment{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *assignmentRepo) CreateSubmission(ctx context.Context, tx *gorm.DB, row *types.AssignmentSubmission) error {
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

func (r *assignmentRepo) GetSubmission(ctx context.Context, tx *gorm.DB, assignmentID, userID uuid.UUID) (*types.AssignmentSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.AssignmentSubmission
	if err := transaction.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *assignmentRepo) GetSubmissionsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AssignmentSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AssignmentSubmission
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) SaveSubmission(ctx context.Context, tx *gorm.DB, row *types.AssignmentSubmission) error {
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
