package discovery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
)

func TestParseFilters_Empty(t *testing.T) {
	q, err := ParseFilters(RawFilters{})
	require.NoError(t, err)
	assert.Empty(t, q.Filters.Genders)
	assert.Empty(t, q.Filters.Interests)
	assert.Nil(t, q.Filters.Age)
	assert.Nil(t, q.Origin)
	assert.Nil(t, q.Radius)
}

func TestParseFilters_Valid(t *testing.T) {
	q, err := ParseFilters(RawFilters{
		Gender:    " male, ,female ",
		Age:       "18-25",
		Interests: "chess,hiking,",
		Latitude:  "55.75",
		Longitude: "-37.6",
		Radius:    "0.5-100",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"male", "female"}, q.Filters.Genders)
	assert.Equal(t, []string{"chess", "hiking"}, q.Filters.Interests)
	require.NotNil(t, q.Filters.Age)
	assert.Equal(t, AgeRange{Min: 18, Max: 25}, *q.Filters.Age)
	require.NotNil(t, q.Origin)
	assert.Equal(t, 55.75, q.Origin.Lat)
	assert.Equal(t, -37.6, q.Origin.Lon)
	require.NotNil(t, q.Radius)
	assert.Equal(t, RadiusRange{MinKm: 0.5, MaxKm: 100}, *q.Radius)
}

func TestParseFilters_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawFilters
		field string
	}{
		{"age without dash", RawFilters{Age: "18"}, "age"},
		{"age not numeric", RawFilters{Age: "abc-25"}, "age"},
		{"age max not numeric", RawFilters{Age: "18-x"}, "age"},
		{"age fractional", RawFilters{Age: "18.5-25"}, "age"},
		{"age negative", RawFilters{Age: "-5-10"}, "age"},
		{"age reversed", RawFilters{Age: "30-20"}, "age"},
		{"radius not numeric", RawFilters{Radius: "near-far"}, "radius"},
		{"radius reversed", RawFilters{Radius: "100-10"}, "radius"},
		{"radius nan", RawFilters{Radius: "NaN-10"}, "radius"},
		{"radius missing bound", RawFilters{Radius: "10-"}, "radius"},
		{"radius exponent missing bound", RawFilters{Radius: "1e-3-"}, "radius"},
		{"radius negative minimum", RawFilters{Radius: "-1-5"}, "radius"},
		{"latitude alone", RawFilters{Latitude: "10"}, "longitude"},
		{"longitude alone", RawFilters{Longitude: "10"}, "latitude"},
		{"latitude out of range", RawFilters{Latitude: "91", Longitude: "0"}, "latitude"},
		{"longitude out of range", RawFilters{Latitude: "0", Longitude: "-181"}, "longitude"},
		{"latitude not numeric", RawFilters{Latitude: "north", Longitude: "0"}, "latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseFilters(tt.raw)
			require.Error(t, err)
			assert.Nil(t, q)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParseFilters_RadiusExponentBounds(t *testing.T) {
	tests := []struct {
		raw  string
		want RadiusRange
	}{
		{"1e-3-5", RadiusRange{MinKm: 0.001, MaxKm: 5}},
		{"0-2.5E-1", RadiusRange{MinKm: 0, MaxKm: 0.25}},
		{"1E-2-1e-1", RadiusRange{MinKm: 0.01, MaxKm: 0.1}},
		{"1e2-1e3", RadiusRange{MinKm: 100, MaxKm: 1000}},
		{" 3 - 7 ", RadiusRange{MinKm: 3, MaxKm: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q, err := ParseFilters(RawFilters{Radius: tt.raw})
			require.NoError(t, err)
			require.NotNil(t, q.Radius)
			assert.InDelta(t, tt.want.MinKm, q.Radius.MinKm, 1e-12)
			assert.InDelta(t, tt.want.MaxKm, q.Radius.MaxKm, 1e-12)
		})
	}
}

func TestCutRange(t *testing.T) {
	tests := []struct {
		in     string
		lo, hi string
		ok     bool
	}{
		{"18-25", "18", "25", true},
		{"1e-3-5", "1e-3", "5", true},
		{"-5-10", "-5", "10", true},
		{"18", "", "", false},
		{"-5", "", "", false},
		{"10-", "", "", false},
		{"1e-3", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lo, hi, ok := cutRange(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}
