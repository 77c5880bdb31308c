package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	"github.com/brightpath-edu/brightpath-backend/internal/types"
)

type recordingEventService struct {
	done chan string
	err  error
}

func (f *recordingEventService) Record(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType string, data map[string]any) (*types.ActivityEvent, error) {
	defer func() { f.done <- eventType }()
	if f.err != nil {
		return nil, f.err
	}
	return &types.ActivityEvent{UserID: userID, Type: eventType}, nil
}

func (f *recordingEventService) List(ctx context.Context, userID uuid.UUID, q EventQuery) ([]*types.ActivityEvent, error) {
	return nil, nil
}

type recordingAggregateService struct {
	done chan string
	boom bool
}

func (f *recordingAggregateService) RecordView(ctx context.Context, contentID, userID uuid.UUID) error {
	defer func() { f.done <- "view" }()
	if f.boom {
		panic("aggregate store gone")
	}
	return nil
}

func (f *recordingAggregateService) RecordCompletion(ctx context.Context, contentID, userID uuid.UUID, in CompletionInput) error {
	defer func() { f.done <- "completion" }()
	return nil
}

func newTestTelemetry(t *testing.T, events EventService, aggregates AggregateService) TelemetryService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewTelemetryService(log, events, aggregates)
}

func waitFor(t *testing.T, ch chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("tracked op: want=%s got=%s", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("telemetry goroutine never ran op %s", want)
	}
}

func TestTrackEventReturnsBeforeWrite(t *testing.T) {
	events := &recordingEventService{done: make(chan string, 1)}
	svc := newTestTelemetry(t, events, &recordingAggregateService{done: make(chan string, 1)})

	start := time.Now()
	svc.TrackEvent(uuid.New(), types.EventTypeChat, map[string]any{"q": "why"})
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("TrackEvent blocked for %v", elapsed)
	}
	waitFor(t, events.done, types.EventTypeChat)
}

func TestTrackSwallowsWriteFailure(t *testing.T) {
	events := &recordingEventService{done: make(chan string, 1), err: errors.New("log append failed")}
	svc := newTestTelemetry(t, events, &recordingAggregateService{done: make(chan string, 1)})

	// The failure must stay inside the goroutine; nothing to assert beyond
	// the write being attempted and no panic escaping.
	svc.TrackEvent(uuid.New(), types.EventTypeLogin, nil)
	waitFor(t, events.done, types.EventTypeLogin)
}

func TestTrackViewRecoversPanic(t *testing.T) {
	aggregates := &recordingAggregateService{done: make(chan string, 1), boom: true}
	svc := newTestTelemetry(t, &recordingEventService{done: make(chan string, 1)}, aggregates)

	svc.TrackView(uuid.New(), uuid.New())
	waitFor(t, aggregates.done, "view")
	// Give the recover a beat; a crash here would fail the whole test binary.
	time.Sleep(20 * time.Millisecond)
}

func TestTrackCompletionForwardsInput(t *testing.T) {
	aggregates := &recordingAggregateService{done: make(chan string, 1)}
	svc := newTestTelemetry(t, &recordingEventService{done: make(chan string, 1)}, aggregates)

	svc.TrackCompletion(uuid.New(), uuid.New(), CompletionInput{TimeSpentSeconds: 42})
	waitFor(t, aggregates.done, "completion")
}
