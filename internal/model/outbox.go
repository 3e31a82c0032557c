package model

import "time"

// OutboxEvent represents an outbox event for reliable message delivery.
type OutboxEvent struct {
	ID          int64      `json:"id"`
	AggregateID string     `json:"aggregate_id"`
	EventType   string     `json:"event_type"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// CreateOutboxEventParams represents parameters for creating a new outbox event.
type CreateOutboxEventParams struct {
	AggregateID string
	EventType   string
	Payload     []byte
}

// EventAction represents the type of event action.
type EventAction string

const (
	// EventActionLogged represents the action-logged event.
	EventActionLogged EventAction = "action_logged"
)

// ActionLoggedEvent represents the payload for action-logged events.
type ActionLoggedEvent struct {
	ActionID     string      `json:"action_id"`
	UserID       string      `json:"user_id"`
	Category     Category    `json:"category"`
	Title        string      `json:"title"`
	PointsEarned int         `json:"points_earned"`
	CO2Reduced   float64     `json:"co2_reduced"`
	Action       EventAction `json:"action"`
}
