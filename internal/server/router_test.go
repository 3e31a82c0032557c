package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolog-app/ecolog/internal/model"
	"github.com/ecolog-app/ecolog/internal/repository"
	"github.com/ecolog-app/ecolog/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryStore) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	handler := &Handler{
		Users:       service.NewUserServiceImpl(store),
		Actions:     service.NewActionServiceImpl(store, store, store, store),
		Metrics:     service.NewMetricsServiceImpl(store, store),
		Leaderboard: service.NewLeaderboardServiceImpl(store),
	}

	return NewRouter(handler, prometheus.NewRegistry()), store
}

func doJSON(t *testing.T, router *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	return recorder
}

func seedTestUser(t *testing.T, store *repository.MemoryStore, id string, accountType model.AccountType) {
	t.Helper()

	_, err := store.Upsert(context.Background(), &model.UpsertUserParams{
		ID:          id,
		AccountType: &accountType,
	})
	require.NoError(t, err)
}

func TestRouter_HealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestRouter_CreateGuest(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/guest", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &user))
	assert.True(t, strings.HasPrefix(user.ID, "guest:"))
	assert.Equal(t, "Guest", user.FirstName)
	assert.Equal(t, "User", user.LastName)
	assert.Equal(t, model.AccountTypeIndividual, user.AccountType)
}

func TestRouter_RequiresIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/api/auth/user", "/api/actions", "/api/metrics/personal", "/api/leaderboard"} {
		recorder := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, path)
	}
}

func TestRouter_GetCurrentUser(t *testing.T) {
	router, store := newTestRouter(t)
	seedTestUser(t, store, "u1", model.AccountTypeIndividual)

	t.Run("Found", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodGet, "/api/auth/user", "u1", nil)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodGet, "/api/auth/user", "missing", nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestRouter_SetAccountType(t *testing.T) {
	router, store := newTestRouter(t)
	seedTestUser(t, store, "u1", model.AccountTypeIndividual)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/account-type", "u1", gin.H{
		"accountType": "corporate",
		"companyName": "Acme Corp",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &user))
	assert.Equal(t, model.AccountTypeCorporate, user.AccountType)
	assert.Equal(t, "Acme Corp", user.CompanyName)

	t.Run("RejectsUnknownType", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/api/auth/account-type", "u1", gin.H{
			"accountType": "government",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestRouter_LogAction(t *testing.T) {
	router, store := newTestRouter(t)
	seedTestUser(t, store, "u1", model.AccountTypeIndividual)

	t.Run("Created", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/api/actions", "u1", gin.H{
			"category": "recycling",
			"title":    "Recycled glass bottles",
			"quantity": "5",
			"unit":     "kg",
		})
		require.Equal(t, http.StatusCreated, recorder.Code)

		var action model.Action
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &action))
		assert.Equal(t, 10.0, action.CO2Reduced)
		assert.Equal(t, 250.0, action.WaterSaved)
		assert.Equal(t, 5.0, action.WasteDiverted)
		assert.Equal(t, 50, action.PointsEarned)
		assert.False(t, action.Verified)
	})

	t.Run("RejectsUnknownCategory", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/api/actions", "u1", gin.H{
			"category": "tree_planting",
			"title":    "Planted a tree",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("RejectsMissingTitle", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/api/actions", "u1", gin.H{
			"category": "recycling",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("ListReturnsLoggedActions", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodGet, "/api/actions", "u1", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var actions []model.Action
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &actions))
		assert.Len(t, actions, 1)
	})

	t.Run("AllActionsFeedSpansUsers", func(t *testing.T) {
		seedTestUser(t, store, "u2", model.AccountTypeIndividual)

		recorder := doJSON(t, router, http.MethodPost, "/api/actions", "u2", gin.H{
			"category": "energy_saving",
			"title":    "Air-dried laundry",
		})
		require.Equal(t, http.StatusCreated, recorder.Code)

		recorder = doJSON(t, router, http.MethodGet, "/api/actions/all", "u1", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var actions []model.Action
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &actions))
		assert.Len(t, actions, 2)
	})
}

func TestRouter_PersonalMetrics(t *testing.T) {
	router, store := newTestRouter(t)
	seedTestUser(t, store, "u1", model.AccountTypeIndividual)

	for _, body := range []gin.H{
		{"category": "sustainable_commute", "title": "Cycled to work", "quantity": "15"},
		{"category": "energy_saving", "title": "LED bulbs", "quantity": "10"},
	} {
		recorder := doJSON(t, router, http.MethodPost, "/api/actions", "u1", body)
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	recorder := doJSON(t, router, http.MethodGet, "/api/metrics/personal", "u1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var metrics model.Metrics
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &metrics))
	assert.Equal(t, 7.25, metrics.CO2Reduced)
	assert.Equal(t, 130.0, metrics.WaterSaved)
	assert.Equal(t, 0.0, metrics.WasteDiverted)
	assert.Equal(t, 95, metrics.EcoPoints)
	assert.Equal(t, 2, metrics.ActionCount)
}

func TestRouter_CorporateMetrics(t *testing.T) {
	router, store := newTestRouter(t)
	seedTestUser(t, store, "person", model.AccountTypeIndividual)
	seedTestUser(t, store, "corp", model.AccountTypeCorporate)

	t.Run("ForbiddenForIndividual", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodGet, "/api/metrics/corporate", "person", nil)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("ReturnsPlaceholderEmployeeCount", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodGet, "/api/metrics/corporate", "corp", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var metrics model.CorporateMetrics
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &metrics))
		assert.Equal(t, 1, metrics.ActiveEmployees)
	})
}

func TestRouter_Leaderboard(t *testing.T) {
	router, store := newTestRouter(t)
	seedTestUser(t, store, "u1", model.AccountTypeIndividual)
	seedTestUser(t, store, "u2", model.AccountTypeIndividual)

	recorder := doJSON(t, router, http.MethodPost, "/api/actions", "u2", gin.H{
		"category": "upcycling",
		"title":    "Restored a chair",
		"quantity": "4",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/leaderboard?type=individual&limit=10", "u1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var entries []model.LeaderboardEntry
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &entries))
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, 12.0, entries[0].CO2Reduced)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "u1", entries[1].UserID)
	assert.Equal(t, 0.0, entries[1].CO2Reduced)
}
