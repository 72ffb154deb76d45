package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

type MessageRepository struct {
	mu       sync.RWMutex
	messages []*domain.Message

	Err error
}

var _ repository.MessageRepository = (*MessageRepository)(nil)

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *MessageRepository) ListConversation(ctx context.Context, userA, userB int64, before *time.Time, limit int) ([]*domain.Message, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Message
	for _, m := range r.messages {
		between := (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA)
		if !between {
			continue
		}
		if before != nil && !m.CreatedAt.Before(*before) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	slices.SortStableFunc(out, func(a, b *domain.Message) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
