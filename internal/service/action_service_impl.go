package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecolog-app/ecolog/internal/impact"
	"github.com/ecolog-app/ecolog/internal/model"
	"github.com/ecolog-app/ecolog/internal/repository"
)

const (
	defaultUserActionsLimit = 50
	defaultAllActionsLimit  = 100
)

// ActionServiceImpl implements ActionService.
type ActionServiceImpl struct {
	userRepo       repository.UserRepository
	actionRepo     repository.ActionRepository
	outboxRepo     repository.OutboxRepository
	transactionMgr repository.TransactionManager
}

// NewActionServiceImpl creates a new ActionService implementation.
func NewActionServiceImpl(
	userRepo repository.UserRepository,
	actionRepo repository.ActionRepository,
	outboxRepo repository.OutboxRepository,
	transactionMgr repository.TransactionManager,
) ActionService {
	return &ActionServiceImpl{
		userRepo:       userRepo,
		actionRepo:     actionRepo,
		outboxRepo:     outboxRepo,
		transactionMgr: transactionMgr,
	}
}

// LogAction validates the input, computes the impact of the action and
// persists it. The action insert, the owner's points increment and the
// outbox event are applied in a single transaction, so a concurrent
// reader never observes one without the others.
func (s *ActionServiceImpl) LogAction(ctx context.Context, userID string, params *model.LogActionParams) (*model.Action, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewValidationError("userId", "user does not exist")
		}

		return nil, err
	}

	metrics := impact.Calculate(params.Category, params.Quantity)

	action := &model.Action{
		ID:            uuid.NewString(),
		UserID:        userID,
		Category:      params.Category,
		Title:         params.Title,
		Description:   params.Description,
		Quantity:      impact.ParseQuantity(params.Quantity),
		Unit:          params.Unit,
		CO2Reduced:    metrics.CO2Reduced,
		WaterSaved:    metrics.WaterSaved,
		WasteDiverted: metrics.WasteDiverted,
		PointsEarned:  metrics.PointsEarned,
		Verified:      false,
		ProofURL:      params.ProofURL,
		CreatedAt:     time.Now().UTC(),
	}

	err := s.transactionMgr.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.actionRepo.Create(ctx, action); err != nil {
			return err
		}

		if err := s.userRepo.IncrementEcoPoints(ctx, userID, action.PointsEarned); err != nil {
			return err
		}

		return s.createOutboxEvent(ctx, action)
	})
	if err != nil {
		return nil, err
	}

	return action, nil
}

// ListUserActions retrieves one user's actions, newest first.
func (s *ActionServiceImpl) ListUserActions(ctx context.Context, userID string, limit int) ([]*model.Action, error) {
	if limit <= 0 {
		limit = defaultUserActionsLimit
	}

	return s.actionRepo.ListByUser(ctx, userID, limit)
}

// ListAllActions retrieves actions across all users, newest first.
func (s *ActionServiceImpl) ListAllActions(ctx context.Context, limit int) ([]*model.Action, error) {
	if limit <= 0 {
		limit = defaultAllActionsLimit
	}

	return s.actionRepo.ListAll(ctx, limit)
}

func (s *ActionServiceImpl) createOutboxEvent(ctx context.Context, action *model.Action) error {
	event := model.ActionLoggedEvent{
		ActionID:     action.ID,
		UserID:       action.UserID,
		Category:     action.Category,
		Title:        action.Title,
		PointsEarned: action.PointsEarned,
		CO2Reduced:   action.CO2Reduced,
		Action:       model.EventActionLogged,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	_, err = s.outboxRepo.CreateEvent(ctx, &model.CreateOutboxEventParams{
		AggregateID: "action_" + action.ID,
		EventType:   string(model.EventActionLogged),
		Payload:     payload,
	})
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	return nil
}
