package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/pkg/geo"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByContact(ctx context.Context, contact string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLocation(ctx context.Context, id int64, point geo.Point) error
	UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error
	UpdateSubscription(ctx context.Context, id int64, subscribed bool, expiresAt *time.Time) error

	// FetchCandidates returns active users matching every predicate, ordered by id.
	FetchCandidates(ctx context.Context, predicates domain.PredicateSet) ([]*domain.User, error)
	// FetchCoordinates returns the stored location, or false if unknown.
	FetchCoordinates(ctx context.Context, id int64) (geo.Point, bool, error)
}

type ConnectionRepository interface {
	Create(ctx context.Context, req *domain.ConnectionRequest) error
	Get(ctx context.Context, senderID, receiverID int64) (*domain.ConnectionRequest, error)
	// GetBetween returns the request in either direction.
	GetBetween(ctx context.Context, userA, userB int64) (*domain.ConnectionRequest, error)
	UpdateStatus(ctx context.Context, senderID, receiverID int64, status domain.ConnectionStatus) error
	// ListByStatus returns the counterpart IDs of userID's requests with the given
	// status, taking userID as sender or receiver per direction.
	ListByStatus(ctx context.Context, userID int64, status domain.ConnectionStatus, direction domain.Direction) ([]int64, error)
}

type SkipRepository interface {
	Create(ctx context.Context, skip *domain.Skip) error
	ListSkippedBy(ctx context.Context, userID int64) ([]int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// ListConversation returns messages between two users, newest first,
	// created strictly before the given time when it is non-nil.
	ListConversation(ctx context.Context, userA, userB int64, before *time.Time, limit int) ([]*domain.Message, error)
}

type PresenceRepository interface {
	SetOnline(ctx context.Context, userID int64) error
	SetOffline(ctx context.Context, userID int64) error
	ListOnline(ctx context.Context, among []int64) ([]int64, error)
}

type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
