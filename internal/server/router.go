// Package server provides the HTTP API on top of the service layer.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecolog-app/ecolog/internal/model"
	"github.com/ecolog-app/ecolog/internal/service"
)

const userIDHeader = "X-User-ID"

const ctxUserID = "userID"

// Handler bundles the services behind the HTTP endpoints.
type Handler struct {
	Users       service.UserService
	Actions     service.ActionService
	Metrics     service.MetricsService
	Leaderboard service.LeaderboardService
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(h *Handler, registry *prometheus.Registry) *gin.Engine {
	registerValidations()

	router := gin.New()
	router.Use(gin.Recovery())

	metrics := NewMetrics(registry)
	router.Use(metrics.Middleware())

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.POST("/auth/guest", h.CreateGuest)

	authed := api.Group("")
	authed.Use(requireUser())
	authed.GET("/auth/user", h.GetCurrentUser)
	authed.POST("/auth/account-type", h.SetAccountType)
	authed.POST("/actions", h.LogAction)
	authed.GET("/actions", h.ListActions)
	authed.GET("/actions/all", h.ListAllActions)
	authed.GET("/metrics/personal", h.PersonalMetrics)
	authed.GET("/metrics/corporate", h.CorporateMetrics)
	authed.GET("/leaderboard", h.GetLeaderboard)

	return router
}

// registerValidations installs the eco_category rule on gin's binding
// validator so request bodies are checked against the closed category set.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("eco_category", func(fl validator.FieldLevel) bool {
			return model.Category(fl.Field().String()).Valid()
		})
	}
}

// requireUser extracts the caller identity established by the external
// auth layer. Requests without it are rejected.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}
