package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ecolog-app/ecolog/internal/model"
)

// OutboxRepositoryImpl implements OutboxRepository using PostgreSQL.
type OutboxRepositoryImpl struct {
	pool Pool
}

// NewOutboxRepositoryImpl creates a new OutboxRepository implementation.
func NewOutboxRepositoryImpl(pool Pool) OutboxRepository {
	return &OutboxRepositoryImpl{pool: pool}
}

// CreateEvent creates a new outbox event.
func (r *OutboxRepositoryImpl) CreateEvent(
	ctx context.Context, params *model.CreateOutboxEventParams,
) (*model.OutboxEvent, error) {
	row := querier(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO outbox_events (aggregate_id, event_type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, aggregate_id, event_type, payload, created_at, published_at`,
		params.AggregateID, params.EventType, params.Payload)

	var (
		event       model.OutboxEvent
		publishedAt *time.Time
	)

	err := row.Scan(&event.ID, &event.AggregateID, &event.EventType, &event.Payload, &event.CreatedAt, &publishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox event: %w", err)
	}

	event.PublishedAt = publishedAt

	return &event, nil
}

// GetUnpublishedEvents retrieves unpublished outbox events, oldest first.
func (r *OutboxRepositoryImpl) GetUnpublishedEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	rows, err := querier(ctx, r.pool).Query(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at, published_at
		FROM outbox_events WHERE published_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unpublished events: %w", err)
	}
	defer rows.Close()

	var events []*model.OutboxEvent

	for rows.Next() {
		var (
			event       model.OutboxEvent
			publishedAt *time.Time
		)

		if err := rows.Scan(&event.ID, &event.AggregateID, &event.EventType, &event.Payload, &event.CreatedAt, &publishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}

		event.PublishedAt = publishedAt
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outbox events: %w", err)
	}

	return events, nil
}

// MarkAsPublished marks an outbox event as published.
func (r *OutboxRepositoryImpl) MarkAsPublished(ctx context.Context, id int64) error {
	_, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE outbox_events SET published_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark event as published: %w", err)
	}

	return nil
}
