package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecolog-app/ecolog/internal/model"
)

type logActionRequest struct {
	Category    string `json:"category" binding:"required,eco_category"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	ProofURL    string `json:"proofUrl"`
}

type accountTypeRequest struct {
	AccountType string `json:"accountType" binding:"required,oneof=individual corporate"`
	CompanyName string `json:"companyName"`
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateGuest handles POST /api/auth/guest. It mints a guest identity
// so the rest of the API can be used without external authentication.
func (h *Handler) CreateGuest(c *gin.Context) {
	user, err := h.Users.CreateGuest(c.Request.Context())
	if err != nil {
		abortWithError(c, err, "Failed to create guest session")
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetCurrentUser handles GET /api/auth/user.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.Users.GetUser(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}

		abortWithError(c, err, "Failed to fetch user")

		return
	}

	c.JSON(http.StatusOK, user)
}

// SetAccountType handles POST /api/auth/account-type.
func (h *Handler) SetAccountType(c *gin.Context) {
	var req accountTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data", "error": err.Error()})
		return
	}

	user, err := h.Users.SetAccountType(
		c.Request.Context(), c.GetString(ctxUserID),
		model.AccountType(req.AccountType), req.CompanyName,
	)
	if err != nil {
		abortWithError(c, err, "Failed to update account type")
		return
	}

	c.JSON(http.StatusOK, user)
}

// LogAction handles POST /api/actions.
func (h *Handler) LogAction(c *gin.Context) {
	var req logActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data", "error": err.Error()})
		return
	}

	action, err := h.Actions.LogAction(c.Request.Context(), c.GetString(ctxUserID), &model.LogActionParams{
		Category:    model.Category(req.Category),
		Title:       req.Title,
		Description: req.Description,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		ProofURL:    req.ProofURL,
	})
	if err != nil {
		abortWithError(c, err, "Failed to create action")
		return
	}

	c.JSON(http.StatusCreated, action)
}

// ListActions handles GET /api/actions.
func (h *Handler) ListActions(c *gin.Context) {
	actions, err := h.Actions.ListUserActions(c.Request.Context(), c.GetString(ctxUserID), intQuery(c, "limit"))
	if err != nil {
		abortWithError(c, err, "Failed to fetch actions")
		return
	}

	if actions == nil {
		actions = []*model.Action{}
	}

	c.JSON(http.StatusOK, actions)
}

// ListAllActions handles GET /api/actions/all, the recent activity
// feed across all users.
func (h *Handler) ListAllActions(c *gin.Context) {
	actions, err := h.Actions.ListAllActions(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		abortWithError(c, err, "Failed to fetch actions")
		return
	}

	if actions == nil {
		actions = []*model.Action{}
	}

	c.JSON(http.StatusOK, actions)
}

// PersonalMetrics handles GET /api/metrics/personal. period=month
// restricts the environmental sums to the current calendar month.
func (h *Handler) PersonalMetrics(c *gin.Context) {
	var since *time.Time
	if c.Query("period") == "month" {
		now := time.Now().UTC()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		since = &start
	}

	metrics, err := h.Metrics.UserMetrics(c.Request.Context(), c.GetString(ctxUserID), since)
	if err != nil {
		abortWithError(c, err, "Failed to fetch metrics")
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// CorporateMetrics handles GET /api/metrics/corporate. Only corporate
// accounts may call it; period=quarter looks back three months.
func (h *Handler) CorporateMetrics(c *gin.Context) {
	userID := c.GetString(ctxUserID)

	user, err := h.Users.GetUser(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		abortWithError(c, err, "Failed to fetch metrics")
		return
	}

	if user == nil || user.AccountType != model.AccountTypeCorporate {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only corporate accounts can access this endpoint"})
		return
	}

	var since *time.Time
	if c.Query("period") == "quarter" {
		back := time.Now().UTC().AddDate(0, -3, 0)
		start := time.Date(back.Year(), back.Month(), back.Day(), 0, 0, 0, 0, time.UTC)
		since = &start
	}

	metrics, err := h.Metrics.CorporateMetrics(c.Request.Context(), userID, since)
	if err != nil {
		abortWithError(c, err, "Failed to fetch metrics")
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetLeaderboard handles GET /api/leaderboard.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	accountType := model.AccountType(c.DefaultQuery("type", string(model.AccountTypeIndividual)))

	entries, err := h.Leaderboard.Leaderboard(c.Request.Context(), accountType, intQuery(c, "limit"))
	if err != nil {
		abortWithError(c, err, "Failed to fetch leaderboard")
		return
	}

	if entries == nil {
		entries = []*model.LeaderboardEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// abortWithError maps service errors to HTTP responses. Validation
// errors carry the offending field; everything else is a 500.
func abortWithError(c *gin.Context, err error, message string) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request data",
			"field":   validationErr.Field,
			"error":   validationErr.Message,
		})

		return
	}

	slog.Error(message, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"message": message})
}

func intQuery(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}

	return value
}
