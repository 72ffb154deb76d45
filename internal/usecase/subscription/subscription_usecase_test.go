package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository/memory"
)

func setup(now time.Time) (*SubscriptionUseCase, *memory.UserRepository) {
	users := memory.NewUserRepository()
	users.Put(&domain.User{ID: 1})
	uc := NewSubscriptionUseCase(users, zap.NewNop())
	uc.now = func() time.Time { return now }
	return uc, users
}

func TestActivate_FromNow(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	uc, _ := setup(now)

	resp, err := uc.Activate(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.Equal(t, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC), *resp.ExpiresAt)

	status, err := uc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, status.Active)
}

func TestActivate_ExtendsActive(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	uc, users := setup(now)
	current := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, users.UpdateSubscription(context.Background(), 1, true, &current))

	resp, err := uc.Activate(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *resp.ExpiresAt)
}

func TestActivate_ExpiredStartsFromNow(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	uc, users := setup(now)
	past := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, users.UpdateSubscription(context.Background(), 1, true, &past))

	status, err := uc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, status.Active)

	resp, err := uc.Activate(context.Background(), 1, 12)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), *resp.ExpiresAt)
}

func TestActivate_Invalid(t *testing.T) {
	uc, _ := setup(time.Now())
	for _, months := range []int{0, -1, 13} {
		_, err := uc.Activate(context.Background(), 1, months)
		var verr *domain.ValidationError
		assert.True(t, errors.As(err, &verr), "months=%d", months)
	}

	_, err := uc.Activate(context.Background(), 42, 1)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
