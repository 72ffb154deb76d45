// Package event publishes domain events to the message broker.
package event

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/infrastructure/mq"
)

const (
	RoutingKeyConnectionRequested = "connection.requested"
	RoutingKeyConnectionAccepted  = "connection.accepted"
	RoutingKeyConnectionRejected  = "connection.rejected"
	RoutingKeyConnectionRemoved   = "connection.removed"
	RoutingKeyMessageSent         = "message.sent"
)

// Payload is the envelope written to the broker.
type Payload struct {
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type ConnectionEvent struct {
	SenderID   int64 `json:"sender_id"`
	ReceiverID int64 `json:"receiver_id"`
}

type MessageEvent struct {
	MessageID  string `json:"message_id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
}

// Publisher emits an event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data interface{}) error
}

type Emitter struct {
	mqClient *mq.RabbitMQ
	exchange string
	logger   *zap.Logger
}

// NewEmitter declares the topic exchange and returns a publisher bound to it.
func NewEmitter(mqClient *mq.RabbitMQ, exchange string, logger *zap.Logger) (*Emitter, error) {
	if err := mqClient.DeclareExchange(exchange, mq.ExchangeTypeTopic); err != nil {
		return nil, err
	}
	return &Emitter{mqClient: mqClient, exchange: exchange, logger: logger}, nil
}

func (e *Emitter) Publish(ctx context.Context, routingKey string, data interface{}) error {
	body, err := encode(routingKey, data)
	if err != nil {
		e.logger.Error("failed to marshal event", zap.String("routing_key", routingKey), zap.Error(err))
		return err
	}
	if err := e.mqClient.Publish(ctx, e.exchange, routingKey, body); err != nil {
		e.logger.Error("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
		return err
	}
	return nil
}

func encode(routingKey string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Payload{EventType: routingKey, OccurredAt: time.Now().UTC(), Data: raw})
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
