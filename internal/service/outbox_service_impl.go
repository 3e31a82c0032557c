package service

import (
	"context"
	"log/slog"

	"github.com/redis/rueidis"

	"github.com/ecolog-app/ecolog/internal/repository"
)

// ActionEventStream is the Redis stream carrying action-logged events.
const ActionEventStream = "action:events"

// OutboxServiceImpl implements OutboxService for processing outbox events.
type OutboxServiceImpl struct {
	outboxRepo  repository.OutboxRepository
	redisClient rueidis.Client
}

// NewOutboxServiceImpl creates a new OutboxService implementation.
func NewOutboxServiceImpl(outboxRepo repository.OutboxRepository, redisClient rueidis.Client) OutboxService {
	return &OutboxServiceImpl{
		outboxRepo:  outboxRepo,
		redisClient: redisClient,
	}
}

// ProcessUnpublishedEvents publishes pending outbox events to the
// action event stream and marks them published. Events that fail to
// publish are left pending for the next poll.
func (s *OutboxServiceImpl) ProcessUnpublishedEvents(ctx context.Context, limit int) error {
	events, err := s.outboxRepo.GetUnpublishedEvents(ctx, limit)
	if err != nil {
		return err
	}

	for _, event := range events {
		cmd := s.redisClient.B().Xadd().Key(ActionEventStream).Id("*").
			FieldValue().FieldValue("event_type", event.EventType).
			FieldValue("aggregate_id", event.AggregateID).
			FieldValue("payload", string(event.Payload)).
			Build()

		if err := s.redisClient.Do(ctx, cmd).Error(); err != nil {
			slog.Error("failed to publish event",
				slog.Int64("event_id", event.ID),
				slog.String("error", err.Error()),
			)

			continue
		}

		if err := s.outboxRepo.MarkAsPublished(ctx, event.ID); err != nil {
			slog.Error("failed to mark event as published",
				slog.Int64("event_id", event.ID),
				slog.String("error", err.Error()),
			)

			continue
		}

		slog.Debug("published event",
			slog.Int64("event_id", event.ID),
			slog.String("stream", ActionEventStream),
		)
	}

	return nil
}
