package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
	"github.com/gdugdh24/geomatch-backend/pkg/geo"
)

type ProfileUseCase struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewProfileUseCase(userRepo repository.UserRepository, logger *zap.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		userRepo: userRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// UpdateProfileRequest represents profile update request. Contact is immutable.
type UpdateProfileRequest struct {
	Name      *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Gender    *string   `json:"gender" binding:"omitempty,max=50"`
	Bio       *string   `json:"bio" binding:"omitempty,max=1000"`
	Interests *[]string `json:"interests" binding:"omitempty,max=50,dive,min=1,max=50"`
	Latitude  *float64  `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64  `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

// UpdateLocationRequest represents a location update
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

// ProfileResponse is the owner's view of their own profile
type ProfileResponse struct {
	*domain.User
	Age int `json:"age"`
}

// PublicProfileResponse is another user's profile as seen by the viewer
type PublicProfileResponse struct {
	*domain.PublicProfile
	Age        int      `json:"age"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// GetMyProfile returns current user's profile
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{User: user, Age: user.AgeAt(uc.now())}, nil
}

// GetProfileByUserID returns another user's profile with age and, when both
// locations are known, the distance from the viewer. Deactivated users are
// reported as not found.
func (uc *ProfileUseCase) GetProfileByUserID(ctx context.Context, targetUserID, currentUserID int64) (*PublicProfileResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() && targetUserID != currentUserID {
		return nil, domain.ErrUserNotFound
	}

	response := &PublicProfileResponse{PublicProfile: user.Public(), Age: user.AgeAt(uc.now())}

	if to, ok := user.Location(); ok {
		from, ok, err := uc.userRepo.FetchCoordinates(ctx, currentUserID)
		if err != nil {
			return nil, err
		}
		if ok {
			d := geo.Distance(from, to)
			response.DistanceKm = &d
		}
	}

	return response, nil
}

// UpdateProfile applies the provided fields
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*ProfileResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, domain.NewValidationError("location", "", "latitude and longitude must be given together")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", *req.Name, "must not be blank")
		}
		user.Name = name
	}
	if req.Gender != nil {
		user.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Interests != nil {
		interests := domain.Interests{}
		for _, s := range *req.Interests {
			if s = strings.TrimSpace(s); s != "" {
				interests = append(interests, s)
			}
		}
		user.Interests = interests
	}
	if req.Latitude != nil {
		if !(geo.Point{Lat: *req.Latitude, Lon: *req.Longitude}).Valid() {
			return nil, domain.NewValidationError("location", "", "coordinates out of range")
		}
		user.Latitude = req.Latitude
		user.Longitude = req.Longitude
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &ProfileResponse{User: user, Age: user.AgeAt(uc.now())}, nil
}

// UpdateLocation stores the user's current coordinates
func (uc *ProfileUseCase) UpdateLocation(ctx context.Context, userID int64, req *UpdateLocationRequest) error {
	if req.Latitude == nil || req.Longitude == nil {
		return domain.NewValidationError("location", "", "latitude and longitude are required")
	}
	point := geo.Point{Lat: *req.Latitude, Lon: *req.Longitude}
	if !point.Valid() {
		return domain.NewValidationError("location", "", "coordinates out of range")
	}
	return uc.userRepo.UpdateLocation(ctx, userID, point)
}

// Deactivate marks the user NON_ACTIVE. Rows are never deleted.
func (uc *ProfileUseCase) Deactivate(ctx context.Context, userID int64) error {
	if err := uc.userRepo.UpdateStatus(ctx, userID, domain.UserStatusNonActive); err != nil {
		return err
	}
	uc.logger.Info("user deactivated", zap.Int64("user_id", userID))
	return nil
}
