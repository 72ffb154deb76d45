package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

type PresenceRepository struct {
	mu     sync.RWMutex
	online map[int64]int
}

var _ repository.PresenceRepository = (*PresenceRepository)(nil)

func NewPresenceRepository() *PresenceRepository {
	return &PresenceRepository{online: make(map[int64]int)}
}

func (r *PresenceRepository) SetOnline(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[userID]++
	return nil
}

func (r *PresenceRepository) SetOffline(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.online[userID] <= 1 {
		delete(r.online, userID)
		return nil
	}
	r.online[userID]--
	return nil
}

func (r *PresenceRepository) ListOnline(ctx context.Context, among []int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []int64
	for _, id := range among {
		if r.online[id] > 0 {
			out = append(out, id)
		}
	}
	return out, nil
}

type TokenDenylist struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

var _ repository.TokenDenylist = (*TokenDenylist)(nil)

func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{revoked: make(map[string]time.Time)}
}

func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	exp, ok := d.revoked[tokenID]
	return ok && time.Now().Before(exp), nil
}
