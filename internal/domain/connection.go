package domain

import "time"

type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusRejected ConnectionStatus = "rejected"
)

// Direction selects which side of a connection request the user is on.
type Direction int

const (
	DirectionSent Direction = iota
	DirectionReceived
)

func (d Direction) String() string {
	if d == DirectionReceived {
		return "received"
	}
	return "sent"
}

// ConnectionRequest is keyed by the ordered (sender, receiver) pair.
// Requests are never deleted, only moved between statuses.
type ConnectionRequest struct {
	SenderID   int64            `json:"sender_id" db:"sender_id"`
	ReceiverID int64            `json:"receiver_id" db:"receiver_id"`
	Status     ConnectionStatus `json:"status" db:"status"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}

func (r *ConnectionRequest) HasUser(userID int64) bool {
	return r.SenderID == userID || r.ReceiverID == userID
}

func (r *ConnectionRequest) OtherUserID(userID int64) (int64, bool) {
	if r.SenderID == userID {
		return r.ReceiverID, true
	}
	if r.ReceiverID == userID {
		return r.SenderID, true
	}
	return 0, false
}

// Skip records that UserID passed on SkippedUserID. Append-only.
type Skip struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	SkippedUserID int64     `json:"skipped_user_id" db:"skipped_user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// StatusPrecedence orders the requests of a pair when both directions exist.
// A settled request outranks a pending one.
func StatusPrecedence(s ConnectionStatus) int {
	switch s {
	case ConnectionStatusAccepted:
		return 0
	case ConnectionStatusRejected:
		return 1
	default:
		return 2
	}
}
