package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecolog-app/ecolog/internal/model"
	"github.com/ecolog-app/ecolog/internal/repository"
)

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	userRepo repository.UserRepository
}

// NewUserServiceImpl creates a new UserService implementation.
func NewUserServiceImpl(userRepo repository.UserRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

// GetUser retrieves a user by ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpsertUser creates or updates a user.
func (s *UserServiceImpl) UpsertUser(ctx context.Context, params *model.UpsertUserParams) (*model.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.userRepo.Upsert(ctx, params)
}

// CreateGuest mints a guest identity and upserts it into the store.
// Guest ids are "guest:"-prefixed so they are recognizable in the data.
func (s *UserServiceImpl) CreateGuest(ctx context.Context) (*model.User, error) {
	firstName := "Guest"
	lastName := "User"

	return s.userRepo.Upsert(ctx, &model.UpsertUserParams{
		ID:        "guest:" + uuid.NewString(),
		FirstName: &firstName,
		LastName:  &lastName,
	})
}

// SetAccountType switches a user between individual and corporate.
// The company name is kept only for corporate accounts.
func (s *UserServiceImpl) SetAccountType(ctx context.Context, id string, accountType model.AccountType, companyName string) (*model.User, error) {
	if !accountType.Valid() {
		return nil, model.NewValidationError("accountType", "accountType must be individual or corporate")
	}

	if accountType != model.AccountTypeCorporate {
		companyName = ""
	}

	return s.userRepo.Upsert(ctx, &model.UpsertUserParams{
		ID:          id,
		AccountType: &accountType,
		CompanyName: &companyName,
	})
}
