package subscription

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

const (
	MinMonths = 1
	MaxMonths = 12
)

type SubscriptionUseCase struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewSubscriptionUseCase(userRepo repository.UserRepository, logger *zap.Logger) *SubscriptionUseCase {
	return &SubscriptionUseCase{
		userRepo: userRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// ActivateRequest represents a subscription purchase
type ActivateRequest struct {
	Months int `json:"months" binding:"required,min=1,max=12"`
}

// StatusResponse represents the current subscription state
type StatusResponse struct {
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Activate extends the subscription by months, counting from the current
// expiry when it is still in the future.
func (uc *SubscriptionUseCase) Activate(ctx context.Context, userID int64, months int) (*StatusResponse, error) {
	if months < MinMonths || months > MaxMonths {
		return nil, domain.NewValidationError("months", fmt.Sprint(months), fmt.Sprintf("must be between %d and %d", MinMonths, MaxMonths))
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	start := now
	if user.HasActiveSubscription(now) {
		start = *user.SubscriptionExpiresAt
	}
	expiresAt := start.AddDate(0, months, 0)

	if err := uc.userRepo.UpdateSubscription(ctx, userID, true, &expiresAt); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Info("subscription activated",
		zap.Int64("user_id", userID),
		zap.Int("months", months),
		zap.Time("expires_at", expiresAt),
	)
	return &StatusResponse{Active: true, ExpiresAt: &expiresAt}, nil
}

// Status reports the subscription, treating an expired one as inactive
func (uc *SubscriptionUseCase) Status(ctx context.Context, userID int64) (*StatusResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{
		Active:    user.HasActiveSubscription(uc.now()),
		ExpiresAt: user.SubscriptionExpiresAt,
	}, nil
}
