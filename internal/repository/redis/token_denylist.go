package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

const revokedTokenPrefix = "auth:revoked:"

type tokenDenylist struct {
	client *redis.Client
}

func NewTokenDenylist(client *redis.Client) repository.TokenDenylist {
	return &tokenDenylist{client: client}
}

// Revoke marks a token id as revoked until ttl elapses.
func (d *tokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err()
}

func (d *tokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, revokedTokenPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
