package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
	"github.com/gdugdh24/geomatch-backend/pkg/geo"
)

const uniqueViolation = "23505"

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	query := `
		INSERT INTO users (
			contact, password_hash, name, gender, date_of_birth, interests, bio,
			latitude, longitude, status, is_subscribed, subscription_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		user.Contact, user.PasswordHash, user.Name, user.Gender, user.DateOfBirth,
		user.Interests, user.Bio, user.Latitude, user.Longitude, user.Status,
		user.IsSubscribed, user.SubscriptionExpiresAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrContactTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByContact(ctx context.Context, contact string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE contact = $1`
	err := r.db.GetContext(ctx, &user, query, contact)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	users := []*domain.User{}
	if len(ids) == 0 {
		return users, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY id ASC`
	err := r.db.SelectContext(ctx, &users, query, pq.Array(ids))
	return users, err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, gender = $2, interests = $3, bio = $4,
		    latitude = $5, longitude = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		user.Name, user.Gender, user.Interests, user.Bio,
		user.Latitude, user.Longitude, user.ID,
	).Scan(&user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	return err
}

func (r *userRepository) UpdateLocation(ctx context.Context, id int64, point geo.Point) error {
	query := `
		UPDATE users
		SET latitude = $1, longitude = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	return r.execOne(ctx, query, point.Lat, point.Lon, id)
}

func (r *userRepository) UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	query := `UPDATE users SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	return r.execOne(ctx, query, status, id)
}

func (r *userRepository) UpdateSubscription(ctx context.Context, id int64, subscribed bool, expiresAt *time.Time) error {
	query := `
		UPDATE users
		SET is_subscribed = $1, subscription_expires_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	return r.execOne(ctx, query, subscribed, expiresAt, id)
}

func (r *userRepository) FetchCandidates(ctx context.Context, predicates domain.PredicateSet) ([]*domain.User, error) {
	users := []*domain.User{}
	query, args := buildCandidateQuery(predicates)
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	return users, nil
}

func (r *userRepository) FetchCoordinates(ctx context.Context, id int64) (geo.Point, bool, error) {
	var row struct {
		Latitude  sql.NullFloat64 `db:"latitude"`
		Longitude sql.NullFloat64 `db:"longitude"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT latitude, longitude FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return geo.Point{}, false, nil
		}
		return geo.Point{}, false, err
	}
	if !row.Latitude.Valid || !row.Longitude.Valid {
		return geo.Point{}, false, nil
	}
	return geo.Point{Lat: row.Latitude.Float64, Lon: row.Longitude.Float64}, true, nil
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
