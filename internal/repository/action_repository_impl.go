package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ecolog-app/ecolog/internal/model"
)

const actionColumns = `id, user_id, category, title, description, quantity::float8, unit,
	co2_reduced::float8, water_saved::float8, waste_diverted::float8,
	points_earned, verified, proof_url, created_at`

// ActionRepositoryImpl implements ActionRepository using PostgreSQL.
type ActionRepositoryImpl struct {
	pool Pool
}

// NewActionRepositoryImpl creates a new ActionRepository implementation.
func NewActionRepositoryImpl(pool Pool) ActionRepository {
	return &ActionRepositoryImpl{pool: pool}
}

// Create appends an action to the history. Actions are append-only;
// there is no update path.
func (r *ActionRepositoryImpl) Create(ctx context.Context, action *model.Action) error {
	_, err := querier(ctx, r.pool).Exec(ctx, `
		INSERT INTO actions (id, user_id, category, title, description, quantity, unit,
			co2_reduced, water_saved, waste_diverted, points_earned, verified, proof_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		action.ID, action.UserID, action.Category, action.Title, action.Description,
		action.Quantity, action.Unit, action.CO2Reduced, action.WaterSaved,
		action.WasteDiverted, action.PointsEarned, action.Verified, action.ProofURL,
		action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create action: %w", err)
	}

	return nil
}

// ListByUser retrieves one user's actions, newest first.
func (r *ActionRepositoryImpl) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Action, error) {
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT `+actionColumns+` FROM actions WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user actions: %w", err)
	}

	return scanActions(rows)
}

// ListAll retrieves actions across all users, newest first.
func (r *ActionRepositoryImpl) ListAll(ctx context.Context, limit int) ([]*model.Action, error) {
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT `+actionColumns+` FROM actions ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	return scanActions(rows)
}

// SumImpact sums the stored impact values of one user's actions.
func (r *ActionRepositoryImpl) SumImpact(ctx context.Context, userID string, since *time.Time) (*model.ImpactTotals, error) {
	query := `SELECT COALESCE(SUM(co2_reduced), 0)::float8, COALESCE(SUM(water_saved), 0)::float8,
		COALESCE(SUM(waste_diverted), 0)::float8, COUNT(*) FROM actions WHERE user_id = $1`
	args := []any{userID}

	if since != nil {
		query += ` AND created_at >= $2`
		args = append(args, *since)
	}

	var totals model.ImpactTotals
	err := querier(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&totals.CO2Reduced, &totals.WaterSaved, &totals.WasteDiverted, &totals.ActionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to sum impact: %w", err)
	}

	return &totals, nil
}

// LeaderboardTotals computes lifetime CO2 totals per user of one
// account type. The left join keeps users without actions at zero.
func (r *ActionRepositoryImpl) LeaderboardTotals(ctx context.Context, accountType model.AccountType, limit int) ([]*model.LeaderboardRow, error) {
	rows, err := querier(ctx, r.pool).Query(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name, u.eco_points,
			COALESCE(SUM(a.co2_reduced), 0)::float8 AS total_co2
		FROM users u
		LEFT JOIN actions a ON a.user_id = u.id
		WHERE u.account_type = $1
		GROUP BY u.id, u.email, u.first_name, u.last_name, u.eco_points
		ORDER BY total_co2 DESC, u.id ASC
		LIMIT $2`,
		accountType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard totals: %w", err)
	}
	defer rows.Close()

	var result []*model.LeaderboardRow

	for rows.Next() {
		var lr model.LeaderboardRow
		if err := rows.Scan(&lr.UserID, &lr.Email, &lr.FirstName, &lr.LastName, &lr.EcoPoints, &lr.CO2Reduced); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}

		result = append(result, &lr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}

	return result, nil
}

func scanActions(rows pgx.Rows) ([]*model.Action, error) {
	defer rows.Close()

	var result []*model.Action

	for rows.Next() {
		var a model.Action
		err := rows.Scan(
			&a.ID, &a.UserID, &a.Category, &a.Title, &a.Description, &a.Quantity,
			&a.Unit, &a.CO2Reduced, &a.WaterSaved, &a.WasteDiverted,
			&a.PointsEarned, &a.Verified, &a.ProofURL, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		result = append(result, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read action rows: %w", err)
	}

	return result, nil
}
