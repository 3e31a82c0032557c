// Package service provides business logic layer implementations.
package service

import (
	"context"
	"time"

	"github.com/ecolog-app/ecolog/internal/model"
)

// UserService defines business logic methods for user management.
type UserService interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpsertUser(ctx context.Context, params *model.UpsertUserParams) (*model.User, error)
	// CreateGuest mints a guest identity and upserts it into the store.
	CreateGuest(ctx context.Context) (*model.User, error)
	SetAccountType(ctx context.Context, id string, accountType model.AccountType, companyName string) (*model.User, error)
}

// ActionService defines business logic methods for logging and
// listing eco-actions.
type ActionService interface {
	LogAction(ctx context.Context, userID string, params *model.LogActionParams) (*model.Action, error)
	ListUserActions(ctx context.Context, userID string, limit int) ([]*model.Action, error)
	ListAllActions(ctx context.Context, limit int) ([]*model.Action, error)
}

// MetricsService defines business logic methods for impact aggregation.
// A non-nil since restricts the environmental sums and the action
// count; ecoPoints is always the all-time total.
type MetricsService interface {
	UserMetrics(ctx context.Context, userID string, since *time.Time) (*model.Metrics, error)
	CorporateMetrics(ctx context.Context, userID string, since *time.Time) (*model.CorporateMetrics, error)
}

// LeaderboardService defines business logic methods for ranking users.
type LeaderboardService interface {
	Leaderboard(ctx context.Context, accountType model.AccountType, limit int) ([]*model.LeaderboardEntry, error)
}

// OutboxService defines business logic methods for outbox event processing.
type OutboxService interface {
	ProcessUnpublishedEvents(ctx context.Context, limit int) error
}
