package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
)

const telemetryTimeout = 5 * time.Second

// TelemetryService is the fire-and-forget boundary between primary actions
// and the analytics stores. Every Track method spawns a detached goroutine
// with its own timeout context, recovers panics, logs failures and returns
// immediately: an analytics problem can never fail or slow the action that
// triggered it.
type TelemetryService interface {
	TrackEvent(userID uuid.UUID, eventType string, data map[string]any)
	TrackView(userID, contentID uuid.UUID)
	TrackCompletion(userID, contentID uuid.UUID, in CompletionInput)
}

type telemetryService struct {
	log          *logger.Logger
	eventService EventService
	aggregates   AggregateService
}

func NewTelemetryService(baseLog *logger.Logger, eventService EventService, aggregates AggregateService) TelemetryService {
	return &telemetryService{
		log:          baseLog.With("service", "TelemetryService"),
		eventService: eventService,
		aggregates:   aggregates,
	}
}

func (s *telemetryService) TrackEvent(userID uuid.UUID, eventType string, data map[string]any) {
	s.detach("event", func(ctx context.Context) error {
		_, err := s.eventService.Record(ctx, nil, userID, eventType, data)
		return err
	})
}

func (s *telemetryService) TrackView(userID, contentID uuid.UUID) {
	s.detach("view", func(ctx context.Context) error {
		return s.aggregates.RecordView(ctx, contentID, userID)
	})
}

func (s *telemetryService) TrackCompletion(userID, contentID uuid.UUID, in CompletionInput) {
	s.detach("completion", func(ctx context.Context) error {
		return s.aggregates.RecordCompletion(ctx, contentID, userID, in)
	})
}

// detach runs fn on its own goroutine and context. The goroutine is never
// joined; the only trace of a failure is a warn log.
func (s *telemetryService) detach(op string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("telemetry panic", "op", op, "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), telemetryTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn("telemetry write dropped", "op", op, "error", err)
		}
	}()
}
