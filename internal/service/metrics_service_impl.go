package service

import (
	"context"
	"errors"
	"time"

	"github.com/ecolog-app/ecolog/internal/impact"
	"github.com/ecolog-app/ecolog/internal/model"
	"github.com/ecolog-app/ecolog/internal/repository"
)

// Employee rollup is not implemented; corporate metrics cover only the
// corporate account's own actions.
const placeholderActiveEmployees = 1

// MetricsServiceImpl implements MetricsService.
type MetricsServiceImpl struct {
	userRepo   repository.UserRepository
	actionRepo repository.ActionRepository
}

// NewMetricsServiceImpl creates a new MetricsService implementation.
func NewMetricsServiceImpl(userRepo repository.UserRepository, actionRepo repository.ActionRepository) MetricsService {
	return &MetricsServiceImpl{
		userRepo:   userRepo,
		actionRepo: actionRepo,
	}
}

// UserMetrics sums the impact of one user's actions. The window, when
// given, applies to the environmental sums and the action count only;
// ecoPoints is read from the user entity and stays all-time. A missing
// user yields zero-valued metrics rather than an error.
func (s *MetricsServiceImpl) UserMetrics(ctx context.Context, userID string, since *time.Time) (*model.Metrics, error) {
	totals, err := s.actionRepo.SumImpact(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	ecoPoints := 0

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			return nil, err
		}
	} else {
		ecoPoints = user.EcoPoints
	}

	return &model.Metrics{
		CO2Reduced:    impact.Round2(totals.CO2Reduced),
		WaterSaved:    impact.Round2(totals.WaterSaved),
		WasteDiverted: impact.Round2(totals.WasteDiverted),
		EcoPoints:     ecoPoints,
		ActionCount:   totals.ActionCount,
	}, nil
}

// CorporateMetrics computes the same aggregation for a corporate
// account, scoped to its own actions.
func (s *MetricsServiceImpl) CorporateMetrics(ctx context.Context, userID string, since *time.Time) (*model.CorporateMetrics, error) {
	metrics, err := s.UserMetrics(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return &model.CorporateMetrics{
		Metrics:         *metrics,
		ActiveEmployees: placeholderActiveEmployees,
	}, nil
}
