package domain

import "time"

type Message struct {
	ID         string    `json:"id" bson:"_id"`
	SenderID   int64     `json:"sender_id" bson:"sender_id"`
	ReceiverID int64     `json:"receiver_id" bson:"receiver_id"`
	Body       string    `json:"body" bson:"body"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
