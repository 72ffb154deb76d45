package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

// presenceKey is a hash of user id -> number of open sockets.
const presenceKey = "chat:presence"

type presenceRepository struct {
	client *redis.Client
}

func NewPresenceRepository(client *redis.Client) repository.PresenceRepository {
	return &presenceRepository{client: client}
}

func (r *presenceRepository) SetOnline(ctx context.Context, userID int64) error {
	return r.client.HIncrBy(ctx, presenceKey, strconv.FormatInt(userID, 10), 1).Err()
}

func (r *presenceRepository) SetOffline(ctx context.Context, userID int64) error {
	field := strconv.FormatInt(userID, 10)
	n, err := r.client.HIncrBy(ctx, presenceKey, field, -1).Result()
	if err != nil {
		return err
	}
	if n <= 0 {
		return r.client.HDel(ctx, presenceKey, field).Err()
	}
	return nil
}

func (r *presenceRepository) ListOnline(ctx context.Context, among []int64) ([]int64, error) {
	if len(among) == 0 {
		return []int64{}, nil
	}
	fields := make([]string, len(among))
	for i, id := range among {
		fields[i] = strconv.FormatInt(id, 10)
	}
	values, err := r.client.HMGet(ctx, presenceKey, fields...).Result()
	if err != nil {
		return nil, err
	}
	online := []int64{}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			online = append(online, among[i])
		}
	}
	return online, nil
}
