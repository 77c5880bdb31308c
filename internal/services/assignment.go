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

type AssignmentInput struct {
	Title       string
	Description string
	LessonID    *uuid.UUID
	DueAt       *time.Time
}

type SubmissionInput struct {
	Answer           string
	TimeSpentSeconds int64
}

type AssignmentService interface {
	Create(ctx context.Context, userID uuid.UUID, in AssignmentInput) (*types.Assignment, error)
	Get(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error)
	List(ctx context.Context, limit, offset int) ([]*types.Assignment, error)
	Submit(ctx context.Context, userID, assignmentID uuid.UUID, in SubmissionInput) (*types.AssignmentSubmission, error)
	Grade(ctx context.Context, assignmentID, userID uuid.UUID, score float64) (*types.AssignmentSubmission, error)
}

type assignmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	assignmentRepo repos.AssignmentRepo
	telemetry      TelemetryService
}

func NewAssignmentService(db *gorm.DB, log *logger.Logger, assignmentRepo repos.AssignmentRepo, telemetry TelemetryService) AssignmentService {
	return &assignmentService{
		db:             db,
		log:            log.With("service", "AssignmentService"),
		assignmentRepo: assignmentRepo,
		telemetry:      telemetry,
	}
}

func (s *assignmentService) Create(ctx context.Context, userID uuid.UUID, in AssignmentInput) (*types.Assignment, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("assignment title required: %w", apperrors.ErrValidation)
	}
	now := time.Now().UTC()
	row := &types.Assignment{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		LessonID:    in.LessonID,
		DueAt:       in.DueAt,
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.assignmentRepo.Create(ctx, nil, []*types.Assignment{row}); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	return row, nil
}

func (s *assignmentService) Get(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error) {
	row, err := s.assignmentRepo.GetByID(ctx, nil, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, apperrors.ErrNotFound)
	}
	return row, nil
}

func (s *assignmentService) List(ctx context.Context, limit, offset int) ([]*types.Assignment, error) {
	rows, err := s.assignmentRepo.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return rows, nil
}

// Submit stores the submission as the primary action and fires the
// assignment-submit event plus the completion aggregate without awaiting.
func (s *assignmentService) Submit(ctx context.Context, userID, assignmentID uuid.UUID, in SubmissionInput) (*types.AssignmentSubmission, error) {
	assignment, err := s.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	existing, err := s.assignmentRepo.GetSubmission(ctx, nil, assignment.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("check submission: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("assignment already submitted: %w", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	row := &types.AssignmentSubmission{
		ID:           uuid.New(),
		AssignmentID: assignment.ID,
		UserID:       userID,
		Status:       types.SubmissionStatusSubmitted,
		Answer:       in.Answer,
		SubmittedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.assignmentRepo.CreateSubmission(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	if s.telemetry != nil {
		s.telemetry.TrackEvent(userID, types.EventTypeAssignmentSubmit, map[string]any{"assignment_id": assignment.ID.String()})
		s.telemetry.TrackCompletion(userID, assignment.ID, CompletionInput{TimeSpentSeconds: in.TimeSpentSeconds})
	}
	return row, nil
}

func (s *assignmentService) Grade(ctx context.Context, assignmentID, userID uuid.UUID, score float64) (*types.AssignmentSubmission, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("score out of range: %w", apperrors.ErrValidation)
	}
	row, err := s.assignmentRepo.GetSubmission(ctx, nil, assignmentID, userID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("submission: %w", apperrors.ErrNotFound)
	}
	row.Status = types.SubmissionStatusGraded
	row.Score = &score
	row.UpdatedAt = time.Now().UTC()
	if err := s.assignmentRepo.SaveSubmission(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}
	return row, nil
}
