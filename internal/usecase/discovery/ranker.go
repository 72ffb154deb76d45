package discovery

import (
	"time"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/pkg/geo"
)

// boundaryEpsilonKm absorbs float rounding so a row sitting on a band edge
// stays inside the inclusive range.
const boundaryEpsilonKm = 1e-9

// GeoFilter is an inclusive distance band around an origin.
type GeoFilter struct {
	Origin geo.Point
	MinKm  float64
	MaxKm  float64
}

// Contains reports whether d lies within the band. NaN never does.
func (f *GeoFilter) Contains(d float64) bool {
	return d >= f.MinKm-boundaryEpsilonKm && d <= f.MaxKm+boundaryEpsilonKm
}

// Rank turns fetched rows into candidates, keeping input order. With a nil
// filter every row passes and carries no distance. Otherwise rows outside
// the band or without coordinates are dropped.
func Rank(rows []*domain.User, filter *GeoFilter, ref time.Time) []*domain.Candidate {
	out := make([]*domain.Candidate, 0, len(rows))
	for _, u := range rows {
		c := &domain.Candidate{PublicProfile: u.Public(), Age: u.AgeAt(ref)}
		if filter != nil {
			loc, ok := u.Location()
			if !ok {
				continue
			}
			d := geo.Distance(filter.Origin, loc)
			if !filter.Contains(d) {
				continue
			}
			c.DistanceKm = &d
		}
		out = append(out, c)
	}
	return out
}
