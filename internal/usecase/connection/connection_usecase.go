package connection

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/event"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

type ConnectionUseCase struct {
	connRepo  repository.ConnectionRepository
	skipRepo  repository.SkipRepository
	userRepo  repository.UserRepository
	publisher event.Publisher
	logger    *zap.Logger
}

func NewConnectionUseCase(
	connRepo repository.ConnectionRepository,
	skipRepo repository.SkipRepository,
	userRepo repository.UserRepository,
	publisher event.Publisher,
	logger *zap.Logger,
) *ConnectionUseCase {
	return &ConnectionUseCase{
		connRepo:  connRepo,
		skipRepo:  skipRepo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Send creates a pending request from sender to receiver
func (uc *ConnectionUseCase) Send(ctx context.Context, senderID, receiverID int64) (*domain.ConnectionRequest, error) {
	if senderID == receiverID {
		return nil, domain.ErrCannotTargetSelf
	}

	receiver, err := uc.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !receiver.IsActive() {
		return nil, domain.ErrUserNotFound
	}

	existing, err := uc.connRepo.GetBetween(ctx, senderID, receiverID)
	switch {
	case err == nil:
		return nil, statusConflict(existing.Status)
	case !errors.Is(err, domain.ErrRequestNotFound):
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}

	req := &domain.ConnectionRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     domain.ConnectionStatusPending,
	}
	if err := uc.connRepo.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrRequestAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	uc.publish(ctx, event.RoutingKeyConnectionRequested, senderID, receiverID)
	return req, nil
}

// Accept moves a pending request sent to receiverID into accepted
func (uc *ConnectionUseCase) Accept(ctx context.Context, receiverID, senderID int64) error {
	if err := uc.resolvePending(ctx, senderID, receiverID, domain.ConnectionStatusAccepted); err != nil {
		return err
	}
	uc.publish(ctx, event.RoutingKeyConnectionAccepted, senderID, receiverID)
	return nil
}

// Reject moves a pending request sent to receiverID into rejected
func (uc *ConnectionUseCase) Reject(ctx context.Context, receiverID, senderID int64) error {
	if err := uc.resolvePending(ctx, senderID, receiverID, domain.ConnectionStatusRejected); err != nil {
		return err
	}
	uc.publish(ctx, event.RoutingKeyConnectionRejected, senderID, receiverID)
	return nil
}

// Remove ends an accepted connection in either direction. The request is
// kept as rejected so the pair stays excluded from discovery.
func (uc *ConnectionUseCase) Remove(ctx context.Context, userID, otherID int64) error {
	req, err := uc.connRepo.GetBetween(ctx, userID, otherID)
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			return domain.ErrNotConnected
		}
		return err
	}
	if req.Status != domain.ConnectionStatusAccepted {
		return domain.ErrNotConnected
	}

	if err := uc.connRepo.UpdateStatus(ctx, req.SenderID, req.ReceiverID, domain.ConnectionStatusRejected); err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}
	uc.publish(ctx, event.RoutingKeyConnectionRemoved, req.SenderID, req.ReceiverID)
	return nil
}

// AreConnected reports whether an accepted request exists either way
func (uc *ConnectionUseCase) AreConnected(ctx context.Context, userA, userB int64) (bool, error) {
	req, err := uc.connRepo.GetBetween(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			return false, nil
		}
		return false, err
	}
	return req.Status == domain.ConnectionStatusAccepted, nil
}

// FriendIDs returns the ids of accepted counterparts in both directions
func (uc *ConnectionUseCase) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	sent, err := uc.connRepo.ListByStatus(ctx, userID, domain.ConnectionStatusAccepted, domain.DirectionSent)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	received, err := uc.connRepo.ListByStatus(ctx, userID, domain.ConnectionStatusAccepted, domain.DirectionReceived)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	ids := lo.Uniq(append(sent, received...))
	slices.Sort(ids)
	return ids, nil
}

// ListFriends returns the profiles of accepted counterparts
func (uc *ConnectionUseCase) ListFriends(ctx context.Context, userID int64) ([]*domain.PublicProfile, error) {
	ids, err := uc.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.publicProfiles(ctx, ids)
}

// ListIncoming returns users with a pending request to userID
func (uc *ConnectionUseCase) ListIncoming(ctx context.Context, userID int64) ([]*domain.PublicProfile, error) {
	ids, err := uc.connRepo.ListByStatus(ctx, userID, domain.ConnectionStatusPending, domain.DirectionReceived)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming requests: %w", err)
	}
	return uc.publicProfiles(ctx, ids)
}

func (uc *ConnectionUseCase) publicProfiles(ctx context.Context, ids []int64) ([]*domain.PublicProfile, error) {
	users, err := uc.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return domain.PublicProfiles(users), nil
}

// Skip records that userID passed on skippedID. Repeated skips are allowed.
func (uc *ConnectionUseCase) Skip(ctx context.Context, userID, skippedID int64) (*domain.Skip, error) {
	if userID == skippedID {
		return nil, domain.ErrCannotTargetSelf
	}
	if _, err := uc.userRepo.GetByID(ctx, skippedID); err != nil {
		return nil, err
	}

	skip := &domain.Skip{UserID: userID, SkippedUserID: skippedID}
	if err := uc.skipRepo.Create(ctx, skip); err != nil {
		return nil, fmt.Errorf("failed to create skip: %w", err)
	}
	return skip, nil
}

func (uc *ConnectionUseCase) resolvePending(ctx context.Context, senderID, receiverID int64, status domain.ConnectionStatus) error {
	req, err := uc.connRepo.Get(ctx, senderID, receiverID)
	if err != nil {
		return err
	}
	if req.Status != domain.ConnectionStatusPending {
		return domain.ErrRequestNotPending
	}
	if err := uc.connRepo.UpdateStatus(ctx, senderID, receiverID, status); err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	return nil
}

// publish is best effort; the state change already happened.
func (uc *ConnectionUseCase) publish(ctx context.Context, key string, senderID, receiverID int64) {
	err := uc.publisher.Publish(ctx, key, event.ConnectionEvent{SenderID: senderID, ReceiverID: receiverID})
	if err != nil {
		uc.logger.Warn("failed to publish connection event",
			zap.String("routing_key", key),
			zap.Int64("sender_id", senderID),
			zap.Int64("receiver_id", receiverID),
			zap.Error(err),
		)
	}
}

func statusConflict(status domain.ConnectionStatus) error {
	switch status {
	case domain.ConnectionStatusAccepted:
		return domain.ErrAlreadyConnected
	case domain.ConnectionStatusRejected:
		return domain.ErrConnectionClosed
	default:
		return domain.ErrRequestAlreadyExists
	}
}
