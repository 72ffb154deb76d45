package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

type skipRepository struct {
	db *sqlx.DB
}

func NewSkipRepository(db *sqlx.DB) repository.SkipRepository {
	return &skipRepository{db: db}
}

func (r *skipRepository) Create(ctx context.Context, skip *domain.Skip) error {
	query := `
		INSERT INTO skips (user_id, skipped_user_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, skip.UserID, skip.SkippedUserID).Scan(&skip.ID, &skip.CreatedAt)
}

func (r *skipRepository) ListSkippedBy(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	query := `SELECT DISTINCT skipped_user_id FROM skips WHERE user_id = $1 ORDER BY skipped_user_id`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}
