package discovery

import (
	"math"
	"strconv"
	"strings"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/pkg/geo"
)

// RawFilters holds discovery parameters exactly as received from the
// transport. Empty strings mean "not supplied".
type RawFilters struct {
	Gender    string `form:"gender"`
	Age       string `form:"age"`
	Interests string `form:"interests"`
	Latitude  string `form:"latitude"`
	Longitude string `form:"longitude"`
	Radius    string `form:"radius"`
}

// AgeRange is an inclusive range of full years.
type AgeRange struct {
	Min int
	Max int
}

// RadiusRange is an inclusive distance band in kilometers.
type RadiusRange struct {
	MinKm float64
	MaxKm float64
}

// Filters are the attribute constraints handed to the compiler.
type Filters struct {
	Genders   []string
	Age       *AgeRange
	Interests []string
}

// Query is a fully parsed discovery request.
type Query struct {
	Filters Filters
	// Origin is set only when both latitude and longitude were supplied.
	Origin *geo.Point
	Radius *RadiusRange
}

// ParseFilters validates raw parameters. Any malformed value yields a
// *domain.ValidationError.
func ParseFilters(raw RawFilters) (*Query, error) {
	q := &Query{
		Filters: Filters{
			Genders:   splitTokens(raw.Gender),
			Interests: splitTokens(raw.Interests),
		},
	}

	if s := strings.TrimSpace(raw.Age); s != "" {
		lo, hi, ok := cutRange(s)
		if !ok {
			return nil, domain.NewValidationError("age", raw.Age, "expected min-max")
		}
		minAge, err := strconv.Atoi(lo)
		if err != nil {
			return nil, domain.NewValidationError("age", raw.Age, "minimum is not an integer")
		}
		maxAge, err := strconv.Atoi(hi)
		if err != nil {
			return nil, domain.NewValidationError("age", raw.Age, "maximum is not an integer")
		}
		if minAge < 0 || maxAge < 0 {
			return nil, domain.NewValidationError("age", raw.Age, "must not be negative")
		}
		if minAge > maxAge {
			return nil, domain.NewValidationError("age", raw.Age, "minimum exceeds maximum")
		}
		q.Filters.Age = &AgeRange{Min: minAge, Max: maxAge}
	}

	if s := strings.TrimSpace(raw.Radius); s != "" {
		lo, hi, ok := cutRange(s)
		if !ok {
			return nil, domain.NewValidationError("radius", raw.Radius, "expected min-max")
		}
		minKm, err := parseFinite(lo)
		if err != nil {
			return nil, domain.NewValidationError("radius", raw.Radius, "minimum is not a number")
		}
		maxKm, err := parseFinite(hi)
		if err != nil {
			return nil, domain.NewValidationError("radius", raw.Radius, "maximum is not a number")
		}
		if minKm < 0 || maxKm < 0 {
			return nil, domain.NewValidationError("radius", raw.Radius, "must not be negative")
		}
		if minKm > maxKm {
			return nil, domain.NewValidationError("radius", raw.Radius, "minimum exceeds maximum")
		}
		q.Radius = &RadiusRange{MinKm: minKm, MaxKm: maxKm}
	}

	latRaw := strings.TrimSpace(raw.Latitude)
	lonRaw := strings.TrimSpace(raw.Longitude)
	switch {
	case latRaw == "" && lonRaw == "":
	case latRaw == "":
		return nil, domain.NewValidationError("latitude", "", "required together with longitude")
	case lonRaw == "":
		return nil, domain.NewValidationError("longitude", "", "required together with latitude")
	default:
		lat, err := parseFinite(latRaw)
		if err != nil || lat < -90 || lat > 90 {
			return nil, domain.NewValidationError("latitude", raw.Latitude, "must be a number in [-90, 90]")
		}
		lon, err := parseFinite(lonRaw)
		if err != nil || lon < -180 || lon > 180 {
			return nil, domain.NewValidationError("longitude", raw.Longitude, "must be a number in [-180, 180]")
		}
		q.Origin = &geo.Point{Lat: lat, Lon: lon}
	}

	return q, nil
}

// splitTokens splits a comma-separated list, trimming blanks.
func splitTokens(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// cutRange splits "min-max" on the first separator dash. A dash at the
// start of the string or right after an exponent marker belongs to a
// number, so "1e-3-5" splits into "1e-3" and "5".
func cutRange(s string) (string, string, bool) {
	sep := -1
	for i := 1; i < len(s); i++ {
		if s[i] != '-' {
			continue
		}
		if prev := s[i-1]; prev == 'e' || prev == 'E' {
			continue
		}
		sep = i
		break
	}
	if sep < 0 {
		return "", "", false
	}
	lo, hi := strings.TrimSpace(s[:sep]), strings.TrimSpace(s[sep+1:])
	if lo == "" || hi == "" {
		return "", "", false
	}
	return lo, hi, true
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
