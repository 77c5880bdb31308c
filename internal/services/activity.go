package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	apperrors "github.com/brightpath-edu/brightpath-backend/internal/pkg/errors"
	"github.com/brightpath-edu/brightpath-backend/internal/repos"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

var eventTypeRe = regexp.MustCompile(`^[a-z0-9_\.]{3,64}$`)

const (
	defaultEventLimit = 500
	maxEventLimit     = 1000
)

// EventQuery filters a user's event history. From/To bound the range as
// [From, To).
type EventQuery struct {
	Type   string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// EventService is the append-only activity log. Timestamps are always
// server-assigned so per-user insertion order is non-decreasing.
type EventService interface {
	Record(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType string, data map[string]any) (*types.ActivityEvent, error)
	List(ctx context.Context, userID uuid.UUID, q EventQuery) ([]*types.ActivityEvent, error)
}

type eventService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ActivityEventRepo
}

func NewEventService(db *gorm.DB, baseLog *logger.Logger, repo repos.ActivityEventRepo) EventService {
	return &eventService{
		db:   db,
		log:  baseLog.With("service", "EventService"),
		repo: repo,
	}
}

func (s *eventService) Record(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType string, data map[string]any) (*types.ActivityEvent, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", apperrors.ErrValidation)
	}
	typ := strings.TrimSpace(strings.ToLower(eventType))
	if !eventTypeRe.MatchString(typ) {
		return nil, fmt.Errorf("invalid event type %q: %w", eventType, apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	var payload datatypes.JSON
	if len(data) > 0 {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode event data: %w", apperrors.ErrValidation)
		}
		payload = datatypes.JSON(b)
	}

	row := &types.ActivityEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       typ,
		OccurredAt: now,
		Data:       payload,
		CreatedAt:  now,
	}
	if _, err := s.repo.Create(ctx, tx, []*types.ActivityEvent{row}); err != nil {
		s.log.Warn("event append failed", "type", typ, "error", err)
		return nil, fmt.Errorf("append event: %w", apperrors.ErrStorage)
	}
	return row, nil
}

func (s *eventService) List(ctx context.Context, userID uuid.UUID, q EventQuery) ([]*types.ActivityEvent, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", apperrors.ErrValidation)
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, fmt.Errorf("date range start after end: %w", apperrors.ErrValidation)
	}
	if q.Type != "" && !eventTypeRe.MatchString(q.Type) {
		return nil, fmt.Errorf("invalid event type filter %q: %w", q.Type, apperrors.ErrValidation)
	}
	if q.Limit <= 0 {
		q.Limit = defaultEventLimit
	}
	if q.Limit > maxEventLimit {
		q.Limit = maxEventLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	rows, err := s.repo.GetByUserID(ctx, nil, userID, repos.EventFilter{
		Type:   q.Type,
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		s.log.Warn("event query failed", "error", err)
		return nil, fmt.Errorf("query events: %w", apperrors.ErrStorage)
	}
	return rows, nil
}
