package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

type SkipRepository struct {
	mu    sync.RWMutex
	skips []domain.Skip

	Err error
}

var _ repository.SkipRepository = (*SkipRepository)(nil)

func NewSkipRepository() *SkipRepository {
	return &SkipRepository{}
}

func (r *SkipRepository) Create(ctx context.Context, skip *domain.Skip) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	skip.ID = int64(len(r.skips) + 1)
	skip.CreatedAt = time.Now()
	r.skips = append(r.skips, *skip)
	return nil
}

// ListSkippedBy returns one entry per skip row; duplicates are kept.
func (r *SkipRepository) ListSkippedBy(ctx context.Context, userID int64) ([]int64, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []int64
	for _, s := range r.skips {
		if s.UserID == userID {
			out = append(out, s.SkippedUserID)
		}
	}
	return out, nil
}
