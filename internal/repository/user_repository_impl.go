package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ecolog-app/ecolog/internal/model"
)

const userColumns = `id, email, first_name, last_name, profile_image_url, account_type, company_name, eco_points, created_at, updated_at`

// UserRepositoryImpl implements UserRepository using PostgreSQL.
type UserRepositoryImpl struct {
	pool Pool
}

// NewUserRepositoryImpl creates a new UserRepository implementation.
func NewUserRepositoryImpl(pool Pool) UserRepository {
	return &UserRepositoryImpl{pool: pool}
}

// Upsert creates the user or updates the provided fields of an
// existing row. Nil params leave existing column values untouched.
// Company name follows the account type: providing an account type
// replaces the company name wholesale.
func (r *UserRepositoryImpl) Upsert(ctx context.Context, params *model.UpsertUserParams) (*model.User, error) {
	row := querier(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url, account_type, company_name)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''), COALESCE($6, 'individual'), COALESCE($7, ''))
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE($2, users.email),
			first_name = COALESCE($3, users.first_name),
			last_name = COALESCE($4, users.last_name),
			profile_image_url = COALESCE($5, users.profile_image_url),
			account_type = COALESCE($6, users.account_type),
			company_name = CASE WHEN $6 IS NOT NULL THEN COALESCE($7, '') ELSE COALESCE($7, users.company_name) END,
			updated_at = now()
		RETURNING `+userColumns,
		params.ID, params.Email, params.FirstName, params.LastName,
		params.ProfileImageURL, params.AccountType, params.CompanyName,
	)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepositoryImpl) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// IncrementEcoPoints applies an atomic delta to the user's points total.
func (r *UserRepositoryImpl) IncrementEcoPoints(ctx context.Context, id string, delta int) error {
	tag, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE users SET eco_points = eco_points + $2, updated_at = now() WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("failed to increment eco points: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.ProfileImageURL, &user.AccountType, &user.CompanyName,
		&user.EcoPoints, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
