package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

type connectionRepository struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) repository.ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, req *domain.ConnectionRequest) error {
	query := `
		INSERT INTO connection_requests (sender_id, receiver_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, req.SenderID, req.ReceiverID, req.Status).
		Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrRequestAlreadyExists
		}
		return fmt.Errorf("failed to insert connection request: %w", err)
	}
	return nil
}

func (r *connectionRepository) Get(ctx context.Context, senderID, receiverID int64) (*domain.ConnectionRequest, error) {
	var req domain.ConnectionRequest
	query := `
		SELECT sender_id, receiver_id, status, created_at, updated_at
		FROM connection_requests
		WHERE sender_id = $1 AND receiver_id = $2
	`
	err := r.db.GetContext(ctx, &req, query, senderID, receiverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// getBetweenQuery ranks settled requests above pending ones so a pair that
// predates the unordered unique index still resolves to its accepted row.
// The order matches domain.StatusPrecedence.
const getBetweenQuery = `
	SELECT sender_id, receiver_id, status, created_at, updated_at
	FROM connection_requests
	WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	ORDER BY CASE status WHEN 'accepted' THEN 0 WHEN 'rejected' THEN 1 ELSE 2 END,
		(sender_id = $1) DESC
	LIMIT 1
`

func (r *connectionRepository) GetBetween(ctx context.Context, userA, userB int64) (*domain.ConnectionRequest, error) {
	var req domain.ConnectionRequest
	err := r.db.GetContext(ctx, &req, getBetweenQuery, userA, userB)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *connectionRepository) UpdateStatus(ctx context.Context, senderID, receiverID int64, status domain.ConnectionStatus) error {
	query := `
		UPDATE connection_requests
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE sender_id = $2 AND receiver_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, senderID, receiverID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *connectionRepository) ListByStatus(ctx context.Context, userID int64, status domain.ConnectionStatus, direction domain.Direction) ([]int64, error) {
	ids := []int64{}
	query := `SELECT receiver_id FROM connection_requests WHERE sender_id = $1 AND status = $2 ORDER BY receiver_id`
	if direction == domain.DirectionReceived {
		query = `SELECT sender_id FROM connection_requests WHERE receiver_id = $1 AND status = $2 ORDER BY sender_id`
	}
	if err := r.db.SelectContext(ctx, &ids, query, userID, status); err != nil {
		return nil, fmt.Errorf("failed to list %s %s requests: %w", status, direction, err)
	}
	return ids, nil
}
