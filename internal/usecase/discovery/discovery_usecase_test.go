package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository/memory"
)

type fixture struct {
	users *memory.UserRepository
	conns *memory.ConnectionRepository
	skips *memory.SkipRepository
	uc    *DiscoveryUseCase
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		users: memory.NewUserRepository(),
		conns: memory.NewConnectionRepository(),
		skips: memory.NewSkipRepository(),
	}
	opts = append([]Option{WithClock(func() time.Time { return refDate })}, opts...)
	f.uc = NewDiscoveryUseCase(f.users, f.conns, f.skips, zap.NewNop(), opts...)
	return f
}

func (f *fixture) put(u *domain.User) {
	if u.DateOfBirth.IsZero() {
		u.DateOfBirth = refDate.AddDate(-25, 0, 0)
	}
	f.users.Put(u)
}

func ids(cs []*domain.Candidate) []int64 {
	out := make([]int64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func TestDiscover_ExclusionScenario(t *testing.T) {
	f := newFixture()
	for id := int64(1); id <= 4; id++ {
		f.put(&domain.User{ID: id})
	}
	f.conns.Put(1, 2, domain.ConnectionStatusAccepted)
	f.conns.Put(1, 3, domain.ConnectionStatusPending)
	require.NoError(t, f.skips.Create(context.Background(), &domain.Skip{UserID: 1, SkippedUserID: 4}))

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(out))
}

func TestDiscover_NeverReturnsRequesterOrInactive(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1})
	f.put(&domain.User{ID: 2, Status: domain.UserStatusNonActive})
	f.put(&domain.User{ID: 3})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(out))
}

func TestDiscover_GenderTokens(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1, Gender: "male"})
	f.put(&domain.User{ID: 2, Gender: "male"})
	f.put(&domain.User{ID: 3, Gender: "female"})
	f.put(&domain.User{ID: 4, Gender: "nonbinary"})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{Gender: "male,female"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(out))
	for _, c := range out {
		assert.True(t, strings.Contains(c.Gender, "male") || strings.Contains(c.Gender, "female"))
	}

	// substring semantics: "male" also matches "female"
	out, err = f.uc.Discover(context.Background(), 1, RawFilters{Gender: "male"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(out))
}

func TestDiscover_AgeWindow(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1})
	f.put(&domain.User{ID: 2, DateOfBirth: time.Date(2006, time.June, 15, 0, 0, 0, 0, time.UTC)}) // turns 18 today
	f.put(&domain.User{ID: 3, DateOfBirth: time.Date(1999, time.June, 15, 0, 0, 0, 0, time.UTC)}) // window start
	f.put(&domain.User{ID: 4, DateOfBirth: time.Date(1999, time.June, 14, 0, 0, 0, 0, time.UTC)})
	f.put(&domain.User{ID: 5, DateOfBirth: time.Date(2006, time.June, 16, 0, 0, 0, 0, time.UTC)})
	f.put(&domain.User{ID: 6, DateOfBirth: time.Date(2002, time.January, 1, 0, 0, 0, 0, time.UTC)})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{Age: "18-25"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 6}, ids(out))

	for _, c := range out {
		assert.GreaterOrEqual(t, c.Age, 18)
		assert.LessOrEqual(t, c.Age, 25)
	}
	assert.Equal(t, 18, out[0].Age)
}

func TestDiscover_Interests(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1})
	f.put(&domain.User{ID: 2, Interests: domain.Interests{"chess", "hiking"}})
	f.put(&domain.User{ID: 3, Interests: domain.Interests{"music"}})
	f.put(&domain.User{ID: 4})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{Interests: "hiking,climbing"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(out))
}

func TestDiscover_RadiusBoundary(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1})
	f.put(&domain.User{ID: 2, Latitude: ptr(latForKm(150)), Longitude: ptr(0)})
	f.put(&domain.User{ID: 3, Latitude: ptr(latForKm(100)), Longitude: ptr(0)})
	f.put(&domain.User{ID: 4})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{Latitude: "0", Longitude: "0", Radius: "0-100"})
	require.NoError(t, err)
	require.Equal(t, []int64{3}, ids(out))
	require.NotNil(t, out[0].DistanceKm)
	assert.InDelta(t, 100, *out[0].DistanceKm, 1e-6)
}

func TestDiscover_DefaultBand(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1})
	f.put(&domain.User{ID: 2, Latitude: ptr(latForKm(900)), Longitude: ptr(0)})
	f.put(&domain.User{ID: 3, Latitude: ptr(latForKm(1500)), Longitude: ptr(0)})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{Latitude: "0", Longitude: "0"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(out))

	f = newFixture(WithDefaultMaxKm(2000))
	f.put(&domain.User{ID: 1})
	f.put(&domain.User{ID: 3, Latitude: ptr(latForKm(1500)), Longitude: ptr(0)})
	out, err = f.uc.Discover(context.Background(), 1, RawFilters{Latitude: "0", Longitude: "0"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(out))
}

func TestDiscover_RadiusUsesStoredLocation(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1, Latitude: ptr(0), Longitude: ptr(0)})
	f.put(&domain.User{ID: 2, Latitude: ptr(latForKm(10)), Longitude: ptr(0)})
	f.put(&domain.User{ID: 3, Latitude: ptr(latForKm(60)), Longitude: ptr(0)})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{Radius: "0-50"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(out))
}

func TestDiscover_RadiusWithoutRequesterLocation(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1})
	f.put(&domain.User{ID: 2, Latitude: ptr(latForKm(500)), Longitude: ptr(0)})
	f.put(&domain.User{ID: 3})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{Radius: "0-50"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(out))
	for _, c := range out {
		assert.Nil(t, c.DistanceKm)
	}
}

func TestDiscover_EmptyResultIsNotAnError(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{Gender: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDiscover_ValidationBeforeStoreAccess(t *testing.T) {
	f := newFixture()
	f.conns.Err = errors.New("must not be called")

	_, err := f.uc.Discover(context.Background(), 1, RawFilters{Age: "eighteen-25"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 0, f.users.FetchCalls)
}

func TestDiscover_StoreErrors(t *testing.T) {
	boom := errors.New("db down")

	t.Run("fetch", func(t *testing.T) {
		f := newFixture()
		f.put(&domain.User{ID: 2})
		f.users.Err = boom

		out, err := f.uc.Discover(context.Background(), 1, RawFilters{})
		assert.Nil(t, out)
		var storeErr *domain.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("exclusions", func(t *testing.T) {
		f := newFixture()
		f.skips.Err = boom

		out, err := f.uc.Discover(context.Background(), 1, RawFilters{})
		assert.Nil(t, out)
		var storeErr *domain.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, 0, f.users.FetchCalls)
	})
}

func TestDiscover_ContextCancelled(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Discover(ctx, 1, RawFilters{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_Idempotent(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1})
	for id := int64(10); id > 1; id-- {
		f.put(&domain.User{ID: id, Gender: "female", Interests: domain.Interests{"art"}})
	}
	raw := RawFilters{Gender: "female", Interests: "art", Age: "20-30"}

	first, err := f.uc.Discover(context.Background(), 1, raw)
	require.NoError(t, err)
	second, err := f.uc.Discover(context.Background(), 1, raw)
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
	assert.IsIncreasing(t, ids(first))
}

func TestDiscover_CandidatesHidePrivateFields(t *testing.T) {
	f := newFixture()
	f.put(&domain.User{ID: 1, Latitude: ptr(0), Longitude: ptr(0)})
	expires := refDate.AddDate(0, 1, 0)
	f.put(&domain.User{
		ID:                    2,
		Contact:               "bob@example.com",
		Name:                  "Bob",
		Latitude:              ptr(latForKm(5)),
		Longitude:             ptr(0),
		IsSubscribed:          true,
		SubscriptionExpiresAt: &expires,
	})

	out, err := f.uc.Discover(context.Background(), 1, RawFilters{Radius: "0-10"})
	require.NoError(t, err)
	require.Len(t, out, 1)

	raw, err := json.Marshal(out[0])
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.Equal(t, "Bob", fields["name"])
	assert.Contains(t, fields, "distance_km")
	for _, key := range []string{"contact", "is_subscribed", "subscription_expires_at", "latitude", "longitude", "date_of_birth", "password_hash"} {
		assert.NotContains(t, fields, key)
	}
}
