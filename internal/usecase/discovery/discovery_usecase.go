package discovery

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

// DefaultMaxKm is the upper bound of the band used when coordinates are
// given without a radius.
const DefaultMaxKm = 1000.0

type DiscoveryUseCase struct {
	userRepo     repository.UserRepository
	exclusions   *ExclusionResolver
	logger       *zap.Logger
	now          func() time.Time
	defaultMaxKm float64
}

type Option func(*DiscoveryUseCase)

// WithClock overrides the reference time used for age windows.
func WithClock(now func() time.Time) Option {
	return func(uc *DiscoveryUseCase) { uc.now = now }
}

// WithDefaultMaxKm overrides DefaultMaxKm. Non-positive values are ignored.
func WithDefaultMaxKm(km float64) Option {
	return func(uc *DiscoveryUseCase) {
		if km > 0 {
			uc.defaultMaxKm = km
		}
	}
}

func NewDiscoveryUseCase(
	userRepo repository.UserRepository,
	connRepo repository.ConnectionRepository,
	skipRepo repository.SkipRepository,
	logger *zap.Logger,
	opts ...Option,
) *DiscoveryUseCase {
	uc := &DiscoveryUseCase{
		userRepo:     userRepo,
		exclusions:   NewExclusionResolver(connRepo, skipRepo),
		logger:       logger,
		now:          time.Now,
		defaultMaxKm: DefaultMaxKm,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Discover returns the active users the requester may be shown, ordered by
// user id. No matches is an empty slice, not an error.
func (uc *DiscoveryUseCase) Discover(ctx context.Context, requesterID int64, raw RawFilters) ([]*domain.Candidate, error) {
	query, err := ParseFilters(raw)
	if err != nil {
		return nil, err
	}

	excluded, err := uc.exclusions.Resolve(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	ref := uc.now()
	predicates := Compile(requesterID, excluded, query.Filters, ref)

	rows, err := uc.userRepo.FetchCandidates(ctx, predicates)
	if err != nil {
		return nil, asStoreError("fetch candidates", err)
	}

	geoFilter, err := uc.geoFilter(ctx, requesterID, query)
	if err != nil {
		return nil, err
	}

	candidates := Rank(rows, geoFilter, ref)

	uc.logger.Debug("discovery completed",
		zap.Int64("requester_id", requesterID),
		zap.Int("excluded", len(excluded)),
		zap.Int("predicates", len(predicates.Predicates)),
		zap.Int("fetched", len(rows)),
		zap.Int("returned", len(candidates)),
		zap.Bool("geo_filter", geoFilter != nil),
	)

	return candidates, nil
}

// geoFilter picks the search origin: explicit coordinates first, then the
// requester's stored location when only a radius was given. Without either
// there is no distance constraint.
func (uc *DiscoveryUseCase) geoFilter(ctx context.Context, requesterID int64, query *Query) (*GeoFilter, error) {
	band := RadiusRange{MinKm: 0, MaxKm: uc.defaultMaxKm}
	if query.Radius != nil {
		band = *query.Radius
	}

	if query.Origin != nil {
		return &GeoFilter{Origin: *query.Origin, MinKm: band.MinKm, MaxKm: band.MaxKm}, nil
	}
	if query.Radius == nil {
		return nil, nil
	}

	origin, ok, err := uc.userRepo.FetchCoordinates(ctx, requesterID)
	if err != nil {
		return nil, asStoreError("fetch requester coordinates", err)
	}
	if !ok {
		uc.logger.Debug("radius ignored, requester has no location", zap.Int64("requester_id", requesterID))
		return nil, nil
	}
	return &GeoFilter{Origin: origin, MinKm: band.MinKm, MaxKm: band.MaxKm}, nil
}

func asStoreError(op string, err error) error {
	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return domain.NewStoreError(op, err)
}
