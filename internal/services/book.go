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

type BookInput struct {
	Title       string
	Author      string
	ContentType string
	SizeBytes   int64
	StorageKey  string
}

// BookService manages library metadata. The file bytes live behind the
// object-storage boundary; only the opaque StorageKey is kept here.
type BookService interface {
	Create(ctx context.Context, userID uuid.UUID, in BookInput) (*types.Book, error)
	Get(ctx context.Context, userID, bookID uuid.UUID) (*types.Book, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Book, error)
	Delete(ctx context.Context, userID, bookID uuid.UUID) error
}

type bookService struct {
	db        *gorm.DB
	log       *logger.Logger
	bookRepo  repos.BookRepo
	telemetry TelemetryService
}

func NewBookService(db *gorm.DB, log *logger.Logger, bookRepo repos.BookRepo, telemetry TelemetryService) BookService {
	return &bookService{
		db:        db,
		log:       log.With("service", "BookService"),
		bookRepo:  bookRepo,
		telemetry: telemetry,
	}
}

func (s *bookService) Create(ctx context.Context, userID uuid.UUID, in BookInput) (*types.Book, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("book title required: %w", apperrors.ErrValidation)
	}
	now := time.Now().UTC()
	row := &types.Book{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		StorageKey:  in.StorageKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.bookRepo.Create(ctx, nil, []*types.Book{row}); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	if s.telemetry != nil {
		s.telemetry.TrackEvent(userID, types.EventTypeBookUpload, map[string]any{"book_id": row.ID.String()})
	}
	return row, nil
}

func (s *bookService) Get(ctx context.Context, userID, bookID uuid.UUID) (*types.Book, error) {
	row, err := s.bookRepo.GetByID(ctx, nil, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("book %s: %w", bookID, apperrors.ErrNotFound)
	}
	if s.telemetry != nil && userID != uuid.Nil {
		s.telemetry.TrackEvent(userID, types.EventTypeLibraryView, map[string]any{"book_id": row.ID.String()})
		s.telemetry.TrackView(userID, row.ID)
	}
	return row, nil
}

func (s *bookService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Book, error) {
	rows, err := s.bookRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return rows, nil
}

func (s *bookService) Delete(ctx context.Context, userID, bookID uuid.UUID) error {
	row, err := s.bookRepo.GetByID(ctx, nil, bookID)
	if err != nil {
		return fmt.Errorf("get book: %w", err)
	}
	if row == nil {
		return fmt.Errorf("book %s: %w", bookID, apperrors.ErrNotFound)
	}
	if row.UserID != userID {
		return fmt.Errorf("book %s belongs to another user: %w", bookID, apperrors.ErrUnauthorized)
	}
	return s.bookRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{bookID})
}
