package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gdugdh24/geomatch-backend/pkg/geo"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusNonActive UserStatus = "NON_ACTIVE"
)

// Interests is stored as a serialized JSON list in a TEXT column.
type Interests []string

func (i Interests) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(i))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (i *Interests) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*i = Interests{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("interests: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*i = Interests{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("interests: %w", err)
	}
	*i = out
	return nil
}

type User struct {
	ID                    int64      `json:"id" db:"id"`
	Contact               string     `json:"contact" db:"contact"`
	PasswordHash          string     `json:"-" db:"password_hash"`
	Name                  string     `json:"name" db:"name"`
	Gender                string     `json:"gender" db:"gender"`
	DateOfBirth           time.Time  `json:"date_of_birth" db:"date_of_birth"`
	Interests             Interests  `json:"interests" db:"interests"`
	Bio                   *string    `json:"bio" db:"bio"`
	Latitude              *float64   `json:"latitude" db:"latitude"`
	Longitude             *float64   `json:"longitude" db:"longitude"`
	Status                UserStatus `json:"status" db:"status"`
	IsSubscribed          bool       `json:"is_subscribed" db:"is_subscribed"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at" db:"subscription_expires_at"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Location returns the user's coordinates, or false if either is unknown.
func (u *User) Location() (geo.Point, bool) {
	if u.Latitude == nil || u.Longitude == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *u.Latitude, Lon: *u.Longitude}, true
}

// AgeAt returns full years between the date of birth and now.
func (u *User) AgeAt(now time.Time) int {
	dob := u.DateOfBirth
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// HasActiveSubscription treats an expired subscription as inactive.
func (u *User) HasActiveSubscription(now time.Time) bool {
	if !u.IsSubscribed || u.SubscriptionExpiresAt == nil {
		return false
	}
	return u.SubscriptionExpiresAt.After(now)
}

// PublicProfile is the view of a user shown to other users. Contact,
// coordinates, date of birth and billing state stay private.
type PublicProfile struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Gender    string     `json:"gender"`
	Interests Interests  `json:"interests"`
	Bio       *string    `json:"bio"`
	Status    UserStatus `json:"status"`
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:        u.ID,
		Name:      u.Name,
		Gender:    u.Gender,
		Interests: u.Interests,
		Bio:       u.Bio,
		Status:    u.Status,
	}
}

// PublicProfiles maps users to their public views, keeping order.
func PublicProfiles(users []*User) []*PublicProfile {
	out := make([]*PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// Candidate is a discovery result: a public profile plus its distance from
// the search origin when a distance filter was applied.
type Candidate struct {
	*PublicProfile
	Age        int      `json:"age"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
