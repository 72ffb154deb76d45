package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
)

func TestConnectionRepository_CreateOnePerPair(t *testing.T) {
	r := NewConnectionRepository()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &domain.ConnectionRequest{SenderID: 1, ReceiverID: 2, Status: domain.ConnectionStatusPending}))

	err := r.Create(ctx, &domain.ConnectionRequest{SenderID: 2, ReceiverID: 1, Status: domain.ConnectionStatusPending})
	assert.ErrorIs(t, err, domain.ErrRequestAlreadyExists)
	err = r.Create(ctx, &domain.ConnectionRequest{SenderID: 1, ReceiverID: 2, Status: domain.ConnectionStatusPending})
	assert.ErrorIs(t, err, domain.ErrRequestAlreadyExists)

	_, err = r.Get(ctx, 2, 1)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestConnectionRepository_GetBetweenPrefersSettled(t *testing.T) {
	tests := []struct {
		name       string
		ab, ba     domain.ConnectionStatus
		wantSender int64
	}{
		{"both pending picks a->b", domain.ConnectionStatusPending, domain.ConnectionStatusPending, 1},
		{"accepted reverse wins", domain.ConnectionStatusPending, domain.ConnectionStatusAccepted, 2},
		{"rejected beats pending", domain.ConnectionStatusRejected, domain.ConnectionStatusPending, 1},
		{"accepted beats rejected", domain.ConnectionStatusRejected, domain.ConnectionStatusAccepted, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewConnectionRepository()
			r.Put(1, 2, tt.ab)
			r.Put(2, 1, tt.ba)

			req, err := r.GetBetween(context.Background(), 1, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSender, req.SenderID)
		})
	}
}
