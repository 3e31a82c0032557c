package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ecolog-app/ecolog/internal/model"
)

type memTxKey struct{}

// MemoryStore is the in-process implementation of the repository
// interfaces, backed by mutex-guarded maps and slices. It is intended
// for tests and for running without a database. Every instance is
// isolated; there is no package-level state.
type MemoryStore struct {
	mu          sync.Mutex
	users       map[string]model.User
	actions     []*model.Action
	outbox      []*model.OutboxEvent
	nextEventID int64
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]model.User),
		nextEventID: 1,
	}
}

var (
	_ UserRepository     = (*MemoryStore)(nil)
	_ ActionRepository   = (*MemoryStore)(nil)
	_ OutboxRepository   = (*MemoryStore)(nil)
	_ TransactionManager = (*MemoryStore)(nil)
)

// lock acquires the store mutex unless ctx is already inside a
// transaction, which holds the mutex for its whole extent.
func (s *MemoryStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}

	s.mu.Lock()

	return s.mu.Unlock
}

// WithTransaction runs fn while holding the store mutex, so concurrent
// readers never observe a partially applied creation. On error the
// store is restored to its pre-transaction state.
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()

	if err := fn(context.WithValue(ctx, memTxKey{}, s)); err != nil {
		s.restore(snapshot)
		return err
	}

	return nil
}

type memSnapshot struct {
	users       map[string]model.User
	actionCount int
	outboxCount int
	nextEventID int64
}

func (s *MemoryStore) snapshot() memSnapshot {
	users := make(map[string]model.User, len(s.users))
	for id, u := range s.users {
		users[id] = u
	}

	return memSnapshot{
		users:       users,
		actionCount: len(s.actions),
		outboxCount: len(s.outbox),
		nextEventID: s.nextEventID,
	}
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.users = snap.users
	s.actions = s.actions[:snap.actionCount]
	s.outbox = s.outbox[:snap.outboxCount]
	s.nextEventID = snap.nextEventID
}

// Upsert creates the user or updates the provided fields of an
// existing one, mirroring the PostgreSQL implementation.
func (s *MemoryStore) Upsert(ctx context.Context, params *model.UpsertUserParams) (*model.User, error) {
	defer s.lock(ctx)()

	now := time.Now().UTC()

	user, exists := s.users[params.ID]
	if !exists {
		user = model.User{
			ID:          params.ID,
			AccountType: model.AccountTypeIndividual,
			CreatedAt:   now,
		}
	}

	if params.Email != nil {
		user.Email = *params.Email
	}

	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}

	if params.LastName != nil {
		user.LastName = *params.LastName
	}

	if params.ProfileImageURL != nil {
		user.ProfileImageURL = *params.ProfileImageURL
	}

	if params.AccountType != nil {
		user.AccountType = *params.AccountType
		// Company name follows the account type change.
		user.CompanyName = ""
	}

	if params.CompanyName != nil {
		user.CompanyName = *params.CompanyName
	}

	user.UpdatedAt = now
	s.users[params.ID] = user

	result := user

	return &result, nil
}

// GetByID retrieves a user by ID.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	defer s.lock(ctx)()

	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}

	result := user

	return &result, nil
}

// IncrementEcoPoints applies a delta to the user's points total.
func (s *MemoryStore) IncrementEcoPoints(ctx context.Context, id string, delta int) error {
	defer s.lock(ctx)()

	user, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}

	user.EcoPoints += delta
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user

	return nil
}

// Create appends an action to the history.
func (s *MemoryStore) Create(ctx context.Context, action *model.Action) error {
	defer s.lock(ctx)()

	stored := *action
	s.actions = append(s.actions, &stored)

	return nil
}

// ListByUser retrieves one user's actions, newest first.
func (s *MemoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Action, error) {
	defer s.lock(ctx)()

	var result []*model.Action

	for i := len(s.actions) - 1; i >= 0; i-- {
		if s.actions[i].UserID == userID {
			copied := *s.actions[i]
			result = append(result, &copied)
		}
	}

	sortActionsNewestFirst(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// ListAll retrieves actions across all users, newest first.
func (s *MemoryStore) ListAll(ctx context.Context, limit int) ([]*model.Action, error) {
	defer s.lock(ctx)()

	result := make([]*model.Action, 0, len(s.actions))

	for i := len(s.actions) - 1; i >= 0; i-- {
		copied := *s.actions[i]
		result = append(result, &copied)
	}

	sortActionsNewestFirst(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// SumImpact sums the stored impact values of one user's actions.
func (s *MemoryStore) SumImpact(ctx context.Context, userID string, since *time.Time) (*model.ImpactTotals, error) {
	defer s.lock(ctx)()

	var totals model.ImpactTotals

	for _, action := range s.actions {
		if action.UserID != userID {
			continue
		}

		if since != nil && action.CreatedAt.Before(*since) {
			continue
		}

		totals.CO2Reduced += action.CO2Reduced
		totals.WaterSaved += action.WaterSaved
		totals.WasteDiverted += action.WasteDiverted
		totals.ActionCount++
	}

	return &totals, nil
}

// LeaderboardTotals computes lifetime CO2 totals per user of one
// account type, descending, ties broken by user id ascending.
func (s *MemoryStore) LeaderboardTotals(ctx context.Context, accountType model.AccountType, limit int) ([]*model.LeaderboardRow, error) {
	defer s.lock(ctx)()

	co2ByUser := make(map[string]float64)
	for _, action := range s.actions {
		co2ByUser[action.UserID] += action.CO2Reduced
	}

	var rows []*model.LeaderboardRow

	for id, user := range s.users {
		if user.AccountType != accountType {
			continue
		}

		rows = append(rows, &model.LeaderboardRow{
			UserID:     id,
			Email:      user.Email,
			FirstName:  user.FirstName,
			LastName:   user.LastName,
			EcoPoints:  user.EcoPoints,
			CO2Reduced: co2ByUser[id],
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CO2Reduced != rows[j].CO2Reduced {
			return rows[i].CO2Reduced > rows[j].CO2Reduced
		}

		return rows[i].UserID < rows[j].UserID
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return rows, nil
}

// CreateEvent creates a new outbox event.
func (s *MemoryStore) CreateEvent(ctx context.Context, params *model.CreateOutboxEventParams) (*model.OutboxEvent, error) {
	defer s.lock(ctx)()

	event := &model.OutboxEvent{
		ID:          s.nextEventID,
		AggregateID: params.AggregateID,
		EventType:   params.EventType,
		Payload:     append([]byte(nil), params.Payload...),
		CreatedAt:   time.Now().UTC(),
	}
	s.nextEventID++
	s.outbox = append(s.outbox, event)

	result := *event

	return &result, nil
}

// GetUnpublishedEvents retrieves unpublished outbox events, oldest first.
func (s *MemoryStore) GetUnpublishedEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	defer s.lock(ctx)()

	var events []*model.OutboxEvent

	for _, event := range s.outbox {
		if event.PublishedAt != nil {
			continue
		}

		copied := *event
		events = append(events, &copied)

		if limit > 0 && len(events) == limit {
			break
		}
	}

	return events, nil
}

// MarkAsPublished marks an outbox event as published.
func (s *MemoryStore) MarkAsPublished(ctx context.Context, id int64) error {
	defer s.lock(ctx)()

	for _, event := range s.outbox {
		if event.ID == id {
			now := time.Now().UTC()
			event.PublishedAt = &now

			return nil
		}
	}

	return nil
}

func sortActionsNewestFirst(actions []*model.Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].CreatedAt.After(actions[j].CreatedAt)
	})
}
