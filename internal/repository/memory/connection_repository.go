package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

type pair struct{ sender, receiver int64 }

type ConnectionRepository struct {
	mu       sync.RWMutex
	requests map[pair]*domain.ConnectionRequest
	order    []pair

	Err error
}

var _ repository.ConnectionRepository = (*ConnectionRepository)(nil)

func NewConnectionRepository() *ConnectionRepository {
	return &ConnectionRepository{requests: make(map[pair]*domain.ConnectionRequest)}
}

// Put seeds a request with the given status. Unlike Create it does not
// enforce one request per pair, so fixtures can hold both directions.
func (r *ConnectionRepository) Put(senderID, receiverID int64, status domain.ConnectionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(&domain.ConnectionRequest{SenderID: senderID, ReceiverID: receiverID, Status: status})
}

func (r *ConnectionRepository) Create(ctx context.Context, req *domain.ConnectionRequest) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// one request per unordered pair
	if _, ok := r.requests[pair{req.SenderID, req.ReceiverID}]; ok {
		return domain.ErrRequestAlreadyExists
	}
	if _, ok := r.requests[pair{req.ReceiverID, req.SenderID}]; ok {
		return domain.ErrRequestAlreadyExists
	}
	r.insert(req)
	return nil
}

func (r *ConnectionRepository) insert(req *domain.ConnectionRequest) {
	key := pair{req.SenderID, req.ReceiverID}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	cp := *req
	if _, ok := r.requests[key]; !ok {
		r.order = append(r.order, key)
	}
	r.requests[key] = &cp
}

func (r *ConnectionRepository) Get(ctx context.Context, senderID, receiverID int64) (*domain.ConnectionRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[pair{senderID, receiverID}]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

// GetBetween mirrors the postgres ordering: accepted, then rejected, then
// pending, with the a->b direction winning ties.
func (r *ConnectionRepository) GetBetween(ctx context.Context, userA, userB int64) (*domain.ConnectionRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *domain.ConnectionRequest
	for _, key := range []pair{{userA, userB}, {userB, userA}} {
		req, ok := r.requests[key]
		if !ok {
			continue
		}
		if best == nil || domain.StatusPrecedence(req.Status) < domain.StatusPrecedence(best.Status) {
			best = req
		}
	}
	if best == nil {
		return nil, domain.ErrRequestNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *ConnectionRepository) UpdateStatus(ctx context.Context, senderID, receiverID int64, status domain.ConnectionStatus) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[pair{senderID, receiverID}]
	if !ok {
		return domain.ErrRequestNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return nil
}

func (r *ConnectionRepository) ListByStatus(ctx context.Context, userID int64, status domain.ConnectionStatus, direction domain.Direction) ([]int64, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []int64
	for _, key := range r.order {
		req := r.requests[key]
		if req.Status != status {
			continue
		}
		switch {
		case direction == domain.DirectionSent && req.SenderID == userID:
			out = append(out, req.ReceiverID)
		case direction == domain.DirectionReceived && req.ReceiverID == userID:
			out = append(out, req.SenderID)
		}
	}
	return out, nil
}
