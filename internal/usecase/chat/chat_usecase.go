package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/event"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

const (
	MaxBodyLength       = 2000
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// Notifier pushes a stored message to the receiver's open sockets.
type Notifier interface {
	Notify(userID int64, msg *domain.Message)
}

type ChatUseCase struct {
	messageRepo  repository.MessageRepository
	connRepo     repository.ConnectionRepository
	presenceRepo repository.PresenceRepository
	notifier     Notifier
	publisher    event.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewChatUseCase(
	messageRepo repository.MessageRepository,
	connRepo repository.ConnectionRepository,
	presenceRepo repository.PresenceRepository,
	notifier Notifier,
	publisher event.Publisher,
	logger *zap.Logger,
) *ChatUseCase {
	return &ChatUseCase{
		messageRepo:  messageRepo,
		connRepo:     connRepo,
		presenceRepo: presenceRepo,
		notifier:     notifier,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// SendMessageRequest represents a chat message
type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// Send stores a message between connected users and fans it out
func (uc *ChatUseCase) Send(ctx context.Context, senderID, receiverID int64, body string) (*domain.Message, error) {
	if senderID == receiverID {
		return nil, domain.ErrCannotTargetSelf
	}
	if strings.TrimSpace(body) == "" {
		return nil, domain.NewValidationError("body", "", "must not be empty")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, domain.NewValidationError("body", "", fmt.Sprintf("must be at most %d characters", MaxBodyLength))
	}

	if err := uc.requireConnected(ctx, senderID, receiverID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  uc.now().UTC(),
	}
	if err := uc.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	uc.notifier.Notify(receiverID, msg)

	err := uc.publisher.Publish(ctx, event.RoutingKeyMessageSent, event.MessageEvent{
		MessageID:  msg.ID,
		SenderID:   senderID,
		ReceiverID: receiverID,
	})
	if err != nil {
		uc.logger.Warn("failed to publish message event", zap.String("message_id", msg.ID), zap.Error(err))
	}

	return msg, nil
}

// History returns a newest-first page of the conversation with otherID
func (uc *ChatUseCase) History(ctx context.Context, userID, otherID int64, limit int, before *time.Time) ([]*domain.Message, error) {
	if err := uc.requireConnected(ctx, userID, otherID); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	messages, err := uc.messageRepo.ListConversation(ctx, userID, otherID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if messages == nil {
		messages = []*domain.Message{}
	}
	return messages, nil
}

// Connect and Disconnect track socket presence
func (uc *ChatUseCase) Connect(ctx context.Context, userID int64) error {
	return uc.presenceRepo.SetOnline(ctx, userID)
}

func (uc *ChatUseCase) Disconnect(ctx context.Context, userID int64) error {
	return uc.presenceRepo.SetOffline(ctx, userID)
}

// OnlineFriends returns the accepted counterparts that have an open socket
func (uc *ChatUseCase) OnlineFriends(ctx context.Context, userID int64) ([]int64, error) {
	var friends []int64
	for _, dir := range []domain.Direction{domain.DirectionSent, domain.DirectionReceived} {
		ids, err := uc.connRepo.ListByStatus(ctx, userID, domain.ConnectionStatusAccepted, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list friends: %w", err)
		}
		friends = append(friends, ids...)
	}
	friends = lo.Uniq(friends)
	slices.Sort(friends)

	online, err := uc.presenceRepo.ListOnline(ctx, friends)
	if err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}
	if online == nil {
		online = []int64{}
	}
	return online, nil
}

func (uc *ChatUseCase) requireConnected(ctx context.Context, userA, userB int64) error {
	req, err := uc.connRepo.GetBetween(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			return domain.ErrNotConnected
		}
		return err
	}
	if req.Status != domain.ConnectionStatusAccepted {
		return domain.ErrNotConnected
	}
	return nil
}
