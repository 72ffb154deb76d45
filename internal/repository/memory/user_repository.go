// Package memory holds map-backed repository implementations used by tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
	"github.com/gdugdh24/geomatch-backend/pkg/geo"
)

type UserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User
	nextID int64

	// Err, when set, is returned by every call.
	Err error
	// FetchCalls counts FetchCandidates invocations.
	FetchCalls int
	// LastPredicates is the set passed to the latest FetchCandidates call.
	LastPredicates domain.PredicateSet
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]*domain.User)}
}

// Put stores a copy of user as is, keeping its ID. Used to seed fixtures.
func (r *UserRepository) Put(user *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	cp := *user
	r.users[user.ID] = &cp
	if user.ID > r.nextID {
		r.nextID = user.ID
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Contact == user.Contact {
			return domain.ErrContactTaken
		}
	}
	r.nextID++
	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByContact(ctx context.Context, contact string) (*domain.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Contact == contact {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.User
	for _, u := range r.sorted() {
		if slices.Contains(ids, u.ID) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.mutate(user.ID, func(u *domain.User) {
		u.Name = user.Name
		u.Gender = user.Gender
		u.Bio = user.Bio
		u.Interests = user.Interests
		u.Latitude = user.Latitude
		u.Longitude = user.Longitude
	})
}

func (r *UserRepository) UpdateLocation(ctx context.Context, id int64, point geo.Point) error {
	return r.mutate(id, func(u *domain.User) {
		lat, lon := point.Lat, point.Lon
		u.Latitude = &lat
		u.Longitude = &lon
	})
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	return r.mutate(id, func(u *domain.User) { u.Status = status })
}

func (r *UserRepository) UpdateSubscription(ctx context.Context, id int64, subscribed bool, expiresAt *time.Time) error {
	return r.mutate(id, func(u *domain.User) {
		u.IsSubscribed = subscribed
		u.SubscriptionExpiresAt = expiresAt
	})
}

func (r *UserRepository) FetchCandidates(ctx context.Context, predicates domain.PredicateSet) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.FetchCalls++
	r.LastPredicates = predicates
	r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.User
	for _, u := range r.sorted() {
		if u.Status != domain.UserStatusActive {
			continue
		}
		if Matches(u, predicates) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *UserRepository) FetchCoordinates(ctx context.Context, id int64) (geo.Point, bool, error) {
	if r.Err != nil {
		return geo.Point{}, false, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return geo.Point{}, false, nil
	}
	p, ok := u.Location()
	return p, ok, nil
}

func (r *UserRepository) mutate(id int64, fn func(*domain.User)) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepository) sorted() []*domain.User {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b *domain.User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Matches evaluates a predicate set against one user with the same
// semantics the SQL renderer produces.
func Matches(u *domain.User, set domain.PredicateSet) bool {
	for _, p := range set.Predicates {
		switch p.Kind {
		case domain.PredicateExcludeIDs:
			if slices.Contains(p.IDs, u.ID) {
				return false
			}
		case domain.PredicateGenderContains:
			if !containsAny(u.Gender, p.Tokens) {
				return false
			}
		case domain.PredicateBirthDateWithin:
			dob := time.Date(u.DateOfBirth.Year(), u.DateOfBirth.Month(), u.DateOfBirth.Day(), 0, 0, 0, 0, time.UTC)
			if dob.Before(p.From) || dob.After(p.To) {
				return false
			}
		case domain.PredicateInterestsContain:
			blob, _ := u.Interests.Value()
			s, _ := blob.(string)
			if !containsAny(s, p.Tokens) {
				return false
			}
		}
	}
	return true
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
