package service

import (
	"context"
	"strings"

	"github.com/ecolog-app/ecolog/internal/impact"
	"github.com/ecolog-app/ecolog/internal/model"
	"github.com/ecolog-app/ecolog/internal/repository"
)

const defaultLeaderboardLimit = 10

// LeaderboardServiceImpl implements LeaderboardService.
type LeaderboardServiceImpl struct {
	actionRepo repository.ActionRepository
}

// NewLeaderboardServiceImpl creates a new LeaderboardService implementation.
func NewLeaderboardServiceImpl(actionRepo repository.ActionRepository) LeaderboardService {
	return &LeaderboardServiceImpl{actionRepo: actionRepo}
}

// Leaderboard ranks users of one account type by lifetime CO2 reduced,
// descending, ties broken by user id ascending. Ranks are the 1-based
// positions in the truncated list. Users without actions appear with a
// zero total.
func (s *LeaderboardServiceImpl) Leaderboard(ctx context.Context, accountType model.AccountType, limit int) ([]*model.LeaderboardEntry, error) {
	if !accountType.Valid() {
		accountType = model.AccountTypeIndividual
	}

	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	rows, err := s.actionRepo.LeaderboardTotals(ctx, accountType, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.LeaderboardEntry{
			Rank:       i + 1,
			UserID:     row.UserID,
			Name:       displayName(row),
			Email:      row.Email,
			CO2Reduced: impact.Round2(row.CO2Reduced),
			EcoPoints:  row.EcoPoints,
		}
	}

	return entries, nil
}

// displayName resolves the leaderboard display name: full name, then
// email, then "Anonymous".
func displayName(row *model.LeaderboardRow) string {
	name := strings.TrimSpace(row.FirstName + " " + row.LastName)
	if name != "" {
		return name
	}

	if row.Email != "" {
		return row.Email
	}

	return "Anonymous"
}
