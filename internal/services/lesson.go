package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	apperrors "github.com/brightpath-edu/brightpath-backend/internal/pkg/errors"
	"github.com/brightpath-edu/brightpath-backend/internal/repos"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

type LessonInput struct {
	Title    string
	Subject  string
	Content  string
	Position int
}

// LessonService is a primary-action surface: reads and completions fire
// telemetry without ever awaiting it.
type LessonService interface {
	Create(ctx context.Context, userID uuid.UUID, in LessonInput) (*types.Lesson, error)
	Get(ctx context.Context, userID, lessonID uuid.UUID) (*types.Lesson, error)
	List(ctx context.Context, subject string, limit, offset int) ([]*types.Lesson, error)
	Update(ctx context.Context, lessonID uuid.UUID, in LessonInput) (*types.Lesson, error)
	Delete(ctx context.Context, lessonID uuid.UUID) error
	Complete(ctx context.Context, userID, lessonID uuid.UUID, in CompletionInput) error
}

type lessonService struct {
	db         *gorm.DB
	log        *logger.Logger
	lessonRepo repos.LessonRepo
	telemetry  TelemetryService
}

func NewLessonService(db *gorm.DB, log *logger.Logger, lessonRepo repos.LessonRepo, telemetry TelemetryService) LessonService {
	return &lessonService{
		db:         db,
		log:        log.With("service", "LessonService"),
		lessonRepo: lessonRepo,
		telemetry:  telemetry,
	}
}

func (s *lessonService) Create(ctx context.Context, userID uuid.UUID, in LessonInput) (*types.Lesson, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("lesson title required: %w", apperrors.ErrValidation)
	}
	now := time.Now().UTC()
	row := &types.Lesson{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Subject:     strings.TrimSpace(in.Subject),
		Content:     in.Content,
		Position:    in.Position,
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.lessonRepo.Create(ctx, nil, []*types.Lesson{row}); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return row, nil
}

func (s *lessonService) Get(ctx context.Context, userID, lessonID uuid.UUID) (*types.Lesson, error) {
	row, err := s.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, apperrors.ErrNotFound)
	}
	if s.telemetry != nil && userID != uuid.Nil {
		s.telemetry.TrackView(userID, row.ID)
		s.telemetry.TrackEvent(userID, types.EventTypeLessonView, map[string]any{"lesson_id": row.ID.String()})
	}
	return row, nil
}

func (s *lessonService) List(ctx context.Context, subject string, limit, offset int) ([]*types.Lesson, error) {
	rows, err := s.lessonRepo.List(ctx, nil, strings.TrimSpace(subject), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return rows, nil
}

func (s *lessonService) Update(ctx context.Context, lessonID uuid.UUID, in LessonInput) (*types.Lesson, error) {
	row, err := s.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, apperrors.ErrNotFound)
	}
	if strings.TrimSpace(in.Title) != "" {
		row.Title = strings.TrimSpace(in.Title)
	}
	if strings.TrimSpace(in.Subject) != "" {
		row.Subject = strings.TrimSpace(in.Subject)
	}
	if in.Content != "" {
		row.Content = in.Content
	}
	if in.Position != 0 {
		row.Position = in.Position
	}
	row.UpdatedAt = time.Now().UTC()
	if err := s.lessonRepo.Update(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("update lesson: %w", err)
	}
	return row, nil
}

func (s *lessonService) Delete(ctx context.Context, lessonID uuid.UUID) error {
	return s.lessonRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{lessonID})
}

// Complete records a lesson completion. The lesson lookup is the primary
// action; the aggregate and event writes are detached telemetry.
func (s *lessonService) Complete(ctx context.Context, userID, lessonID uuid.UUID, in CompletionInput) error {
	row, err := s.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return fmt.Errorf("get lesson: %w", err)
	}
	if row == nil {
		return fmt.Errorf("lesson %s: %w", lessonID, apperrors.ErrNotFound)
	}
	if s.telemetry != nil {
		s.telemetry.TrackCompletion(userID, row.ID, in)
		s.telemetry.TrackEvent(userID, types.EventTypeLessonComplete, map[string]any{"lesson_id": row.ID.String()})
	}
	return nil
}
