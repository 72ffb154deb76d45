package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
	"github.com/gdugdh24/geomatch-backend/pkg/geo"
)

const dateLayout = "2006-01-02"

type AuthUseCase struct {
	userRepo   repository.UserRepository
	denylist   repository.TokenDenylist
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	denylist repository.TokenDenylist,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		denylist:   denylist,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Claims carried by access tokens. ID (jti) keys the logout deny-list.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// SignupRequest represents a registration
type SignupRequest struct {
	Contact     string   `json:"contact" binding:"required,min=3,max=255"`
	Password    string   `json:"password" binding:"required,min=8,max=72"`
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Gender      string   `json:"gender" binding:"required,max=50"`
	DateOfBirth string   `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	Interests   []string `json:"interests" binding:"omitempty,max=50,dive,min=1,max=50"`
	Bio         *string  `json:"bio" binding:"omitempty,max=1000"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

// LoginRequest represents a login
type LoginRequest struct {
	Contact  string `json:"contact" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Signup registers a new active user and issues a token
func (uc *AuthUseCase) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	contact := strings.ToLower(strings.TrimSpace(req.Contact))
	if contact == "" {
		return nil, domain.NewValidationError("contact", req.Contact, "must not be blank")
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, domain.NewValidationError("date_of_birth", req.DateOfBirth, "expected YYYY-MM-DD")
	}
	if !dob.Before(uc.now()) {
		return nil, domain.NewValidationError("date_of_birth", req.DateOfBirth, "must be in the past")
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, domain.NewValidationError("location", "", "latitude and longitude must be given together")
	}
	if req.Latitude != nil && !(geo.Point{Lat: *req.Latitude, Lon: *req.Longitude}).Valid() {
		return nil, domain.NewValidationError("location", "", "coordinates out of range")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Contact:      contact,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Gender:       strings.TrimSpace(req.Gender),
		DateOfBirth:  dob,
		Interests:    normalizeInterests(req.Interests),
		Bio:          req.Bio,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Status:       domain.UserStatusActive,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrContactTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.logger.Info("user signed up", zap.Int64("user_id", user.ID))
	return uc.issue(user)
}

// Login checks credentials and issues a token. Deactivated users cannot log in.
func (uc *AuthUseCase) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	contact := strings.ToLower(strings.TrimSpace(req.Contact))
	user, err := uc.userRepo.GetByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, domain.ErrUserInactive
	}

	return uc.issue(user)
}

// VerifyToken validates a token and returns its user ID
func (uc *AuthUseCase) VerifyToken(ctx context.Context, tokenString string) (int64, error) {
	claims, err := uc.parse(tokenString)
	if err != nil {
		return 0, err
	}

	revoked, err := uc.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return 0, domain.ErrInvalidToken
	}

	// deactivated or removed accounts lose access before their tokens expire
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return 0, domain.ErrInvalidToken
		}
		return 0, fmt.Errorf("failed to load token owner: %w", err)
	}
	if !user.IsActive() {
		return 0, domain.ErrUserInactive
	}

	return claims.UserID, nil
}

// Logout revokes the token until it would have expired anyway
func (uc *AuthUseCase) Logout(ctx context.Context, tokenString string) error {
	claims, err := uc.parse(tokenString)
	if err != nil {
		return err
	}

	ttl := claims.ExpiresAt.Time.Sub(uc.now())
	if err := uc.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (uc *AuthUseCase) issue(user *domain.User) (*AuthResponse, error) {
	now := uc.now()
	expiresAt := now.Add(uc.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{Token: tokenString, ExpiresAt: expiresAt, User: user}, nil
}

func (uc *AuthUseCase) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return uc.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(uc.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func normalizeInterests(in []string) domain.Interests {
	out := domain.Interests{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
