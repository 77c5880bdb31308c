package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	apperrors "github.com/brightpath-edu/brightpath-backend/internal/pkg/errors"
	"github.com/brightpath-edu/brightpath-backend/internal/repos"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

type capturingEventRepo struct {
	fakeEventRepo
	lastFilter repos.EventFilter
	createErr  error
}

func (f *capturingEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.ActivityEvent) ([]*types.ActivityEvent, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.fakeEventRepo.Create(ctx, tx, events)
}

func (f *capturingEventRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter repos.EventFilter) ([]*types.ActivityEvent, error) {
	f.lastFilter = filter
	return f.fakeEventRepo.GetByUserID(ctx, tx, userID, filter)
}

func newTestEventService(t *testing.T, repo repos.ActivityEventRepo) EventService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewEventService(nil, log, repo)
}

func TestRecordNormalizesAndStamps(t *testing.T) {
	repo := &capturingEventRepo{}
	svc := newTestEventService(t, repo)
	userID := uuid.New()

	before := time.Now().UTC()
	row, err := svc.Record(context.Background(), nil, userID, "  Lesson_View  ", map[string]any{"lesson_id": "abc"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if row.Type != "lesson_view" {
		t.Fatalf("type normalization: want=lesson_view got=%s", row.Type)
	}
	if row.OccurredAt.Before(before) || row.OccurredAt.After(time.Now().UTC()) {
		t.Fatalf("occurred_at must be server-assigned: got=%v", row.OccurredAt)
	}
	if len(repo.events) != 1 {
		t.Fatalf("events persisted: want=1 got=%d", len(repo.events))
	}
	if len(row.Data) == 0 {
		t.Fatalf("event data dropped")
	}
}

func TestRecordRejectsBadInput(t *testing.T) {
	svc := newTestEventService(t, &capturingEventRepo{})
	ctx := context.Background()

	cases := []struct {
		name      string
		userID    uuid.UUID
		eventType string
	}{
		{"nil user", uuid.Nil, "chat"},
		{"too short", uuid.New(), "ab"},
		{"bad characters", uuid.New(), "chat message!"},
		{"empty", uuid.New(), ""},
	}
	for _, tc := range cases {
		if _, err := svc.Record(ctx, nil, tc.userID, tc.eventType, nil); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("%s: want ErrValidation got %v", tc.name, err)
		}
	}
}

func TestRecordWrapsStorageFailure(t *testing.T) {
	repo := &capturingEventRepo{createErr: errors.New("connection reset")}
	svc := newTestEventService(t, repo)

	_, err := svc.Record(context.Background(), nil, uuid.New(), "chat", nil)
	if !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("want ErrStorage, got %v", err)
	}
}

func TestListClampsLimits(t *testing.T) {
	repo := &capturingEventRepo{}
	svc := newTestEventService(t, repo)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.List(ctx, userID, EventQuery{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastFilter.Limit != defaultEventLimit {
		t.Fatalf("default limit: want=%d got=%d", defaultEventLimit, repo.lastFilter.Limit)
	}

	if _, err := svc.List(ctx, userID, EventQuery{Limit: 5000, Offset: -3}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastFilter.Limit != maxEventLimit {
		t.Fatalf("limit cap: want=%d got=%d", maxEventLimit, repo.lastFilter.Limit)
	}
	if repo.lastFilter.Offset != 0 {
		t.Fatalf("negative offset: want=0 got=%d", repo.lastFilter.Offset)
	}
}

func TestListRejectsInvertedRange(t *testing.T) {
	svc := newTestEventService(t, &capturingEventRepo{})
	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := svc.List(context.Background(), uuid.New(), EventQuery{From: &from, To: &to})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}
