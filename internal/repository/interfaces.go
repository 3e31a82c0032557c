// Package repository provides data access interfaces and implementations.
//
// Two implementations exist: a durable PostgreSQL store and an
// in-process memory store. Both are constructed explicitly and
// injected; the driver is chosen at process start.
package repository

import (
	"context"
	"time"

	"github.com/ecolog-app/ecolog/internal/model"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	Upsert(ctx context.Context, params *model.UpsertUserParams) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	// IncrementEcoPoints applies an atomic delta to the user's running
	// points total. It must never be implemented as read-modify-write.
	IncrementEcoPoints(ctx context.Context, id string, delta int) error
}

// ActionRepository defines methods for action data access and the
// aggregations computed over the action history.
type ActionRepository interface {
	Create(ctx context.Context, action *model.Action) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Action, error)
	ListAll(ctx context.Context, limit int) ([]*model.Action, error)
	// SumImpact sums the stored impact values of one user's actions,
	// restricted to createdAt >= since when since is non-nil.
	SumImpact(ctx context.Context, userID string, since *time.Time) (*model.ImpactTotals, error)
	// LeaderboardTotals returns lifetime CO2 totals per user of the
	// given account type, descending, ties broken by user id ascending.
	// Users without actions are included with a zero total.
	LeaderboardTotals(ctx context.Context, accountType model.AccountType, limit int) ([]*model.LeaderboardRow, error)
}

// OutboxRepository defines methods for outbox event data access.
type OutboxRepository interface {
	CreateEvent(ctx context.Context, params *model.CreateOutboxEventParams) (*model.OutboxEvent, error)
	GetUnpublishedEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkAsPublished(ctx context.Context, id int64) error
}

// TransactionManager defines methods for store transaction management.
// Repository calls made with the context passed to fn run inside the
// same transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
