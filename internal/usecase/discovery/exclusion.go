package discovery

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/repository"
)

// ExclusionResolver computes the users a requester must never be shown.
type ExclusionResolver struct {
	connRepo repository.ConnectionRepository
	skipRepo repository.SkipRepository
}

func NewExclusionResolver(connRepo repository.ConnectionRepository, skipRepo repository.SkipRepository) *ExclusionResolver {
	return &ExclusionResolver{
		connRepo: connRepo,
		skipRepo: skipRepo,
	}
}

// Resolve returns the sorted, deduplicated union of accepted and rejected
// counterparts in both directions plus everyone the requester skipped.
// Pending requests do not exclude. The requester is not included.
func (r *ExclusionResolver) Resolve(ctx context.Context, requesterID int64) ([]int64, error) {
	var ids []int64

	for _, status := range []domain.ConnectionStatus{domain.ConnectionStatusAccepted, domain.ConnectionStatusRejected} {
		for _, dir := range []domain.Direction{domain.DirectionSent, domain.DirectionReceived} {
			found, err := r.connRepo.ListByStatus(ctx, requesterID, status, dir)
			if err != nil {
				return nil, domain.NewStoreError(fmt.Sprintf("list %s %s connections", status, dir), err)
			}
			ids = append(ids, found...)
		}
	}

	skipped, err := r.skipRepo.ListSkippedBy(ctx, requesterID)
	if err != nil {
		return nil, domain.NewStoreError("list skipped users", err)
	}
	ids = append(ids, skipped...)

	ids = lo.Uniq(ids)
	slices.Sort(ids)
	return ids, nil
}
