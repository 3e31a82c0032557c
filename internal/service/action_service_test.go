package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolog-app/ecolog/internal/model"
	"github.com/ecolog-app/ecolog/internal/repository"
)

func newActionServiceWithStore(t *testing.T) (ActionService, *repository.MemoryStore) {
	t.Helper()

	store := repository.NewMemoryStore()

	return NewActionServiceImpl(store, store, store, store), store
}

func createUser(t *testing.T, store *repository.MemoryStore, id string) *model.User {
	t.Helper()

	user, err := store.Upsert(context.Background(), &model.UpsertUserParams{ID: id})
	require.NoError(t, err)

	return user
}

func TestActionService_LogAction(t *testing.T) {
	ctx := context.Background()

	t.Run("RecyclingComputesImpactAndIncrementsPoints", func(t *testing.T) {
		svc, store := newActionServiceWithStore(t)
		createUser(t, store, "user-1")

		action, err := svc.LogAction(ctx, "user-1", &model.LogActionParams{
			Category: model.CategoryRecycling,
			Title:    "Recycled glass bottles",
			Quantity: "5",
			Unit:     "kg",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, action.ID)
		assert.Equal(t, "user-1", action.UserID)
		assert.Equal(t, 10.0, action.CO2Reduced)
		assert.Equal(t, 250.0, action.WaterSaved)
		assert.Equal(t, 5.0, action.WasteDiverted)
		assert.Equal(t, 50, action.PointsEarned)
		assert.False(t, action.Verified)
		assert.False(t, action.CreatedAt.IsZero())

		user, err := store.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 50, user.EcoPoints)
	})

	t.Run("PointsAccumulateAcrossActions", func(t *testing.T) {
		svc, store := newActionServiceWithStore(t)
		createUser(t, store, "user-1")

		_, err := svc.LogAction(ctx, "user-1", &model.LogActionParams{
			Category: model.CategorySustainableCommute,
			Title:    "Cycled to work",
			Quantity: "15",
		})
		require.NoError(t, err)

		_, err = svc.LogAction(ctx, "user-1", &model.LogActionParams{
			Category: model.CategoryEnergySaving,
			Title:    "Switched to LED bulbs",
			Quantity: "10",
		})
		require.NoError(t, err)

		user, err := store.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 95, user.EcoPoints)
	})

	t.Run("WritesOutboxEventInSameTransaction", func(t *testing.T) {
		svc, store := newActionServiceWithStore(t)
		createUser(t, store, "user-1")

		action, err := svc.LogAction(ctx, "user-1", &model.LogActionParams{
			Category: model.CategoryUpcycling,
			Title:    "Turned pallets into a table",
			Quantity: "2",
		})
		require.NoError(t, err)

		events, err := store.GetUnpublishedEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, string(model.EventActionLogged), events[0].EventType)
		assert.Equal(t, "action_"+action.ID, events[0].AggregateID)
	})

	t.Run("InvalidCategory", func(t *testing.T) {
		svc, store := newActionServiceWithStore(t)
		createUser(t, store, "user-1")

		_, err := svc.LogAction(ctx, "user-1", &model.LogActionParams{
			Category: model.Category("tree_planting"),
			Title:    "Planted a tree",
		})

		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "category", validationErr.Field)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		svc, store := newActionServiceWithStore(t)
		createUser(t, store, "user-1")

		_, err := svc.LogAction(ctx, "user-1", &model.LogActionParams{
			Category: model.CategoryRecycling,
		})

		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "title", validationErr.Field)
	})

	t.Run("NegativeQuantity", func(t *testing.T) {
		svc, store := newActionServiceWithStore(t)
		createUser(t, store, "user-1")

		_, err := svc.LogAction(ctx, "user-1", &model.LogActionParams{
			Category: model.CategoryRecycling,
			Title:    "Recycled",
			Quantity: "-3",
		})

		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "quantity", validationErr.Field)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		svc, _ := newActionServiceWithStore(t)

		_, err := svc.LogAction(ctx, "missing", &model.LogActionParams{
			Category: model.CategoryRecycling,
			Title:    "Recycled",
		})

		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "userId", validationErr.Field)
	})
}

func TestActionService_ListUserActions(t *testing.T) {
	ctx := context.Background()
	svc, store := newActionServiceWithStore(t)
	createUser(t, store, "user-1")
	createUser(t, store, "user-2")

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		_, err := svc.LogAction(ctx, "user-1", &model.LogActionParams{
			Category: model.CategoryRecycling,
			Title:    title,
			Quantity: "1",
		})
		require.NoError(t, err)
	}

	_, err := svc.LogAction(ctx, "user-2", &model.LogActionParams{
		Category: model.CategoryEnergySaving,
		Title:    "other user",
	})
	require.NoError(t, err)

	t.Run("NewestFirstAndScopedToUser", func(t *testing.T) {
		actions, err := svc.ListUserActions(ctx, "user-1", 0)
		require.NoError(t, err)
		require.Len(t, actions, 3)
		assert.Equal(t, "third", actions[0].Title)
		assert.Equal(t, "second", actions[1].Title)
		assert.Equal(t, "first", actions[2].Title)
	})

	t.Run("LimitApplies", func(t *testing.T) {
		actions, err := svc.ListUserActions(ctx, "user-1", 2)
		require.NoError(t, err)
		assert.Len(t, actions, 2)
	})

	t.Run("ListAllSpansUsers", func(t *testing.T) {
		actions, err := svc.ListAllActions(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, actions, 4)
	})
}
