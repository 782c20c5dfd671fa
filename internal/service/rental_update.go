package service

import (
	"context"
	"errors"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

const defaultMaxRetries = 3

// rentalUpdater runs read-modify-write cycles against the versioned bundle rental row.
type rentalUpdater struct {
	repo       repository.BundleRentalRepository
	maxRetries int
}

func newRentalUpdater(repo repository.BundleRentalRepository, maxRetries int) rentalUpdater {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	return rentalUpdater{repo: repo, maxRetries: maxRetries}
}

// apply loads the rental, lets mutate change it and writes it back. A stale version
// re-reads and runs mutate again on the fresh state, so mutate must re-check its
// preconditions every time. The returned rental is the one that was committed.
func (u rentalUpdater) apply(ctx context.Context, id int32, mutate func(*domain.BundleRental) error) (*domain.BundleRental, error) {
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		br, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := mutate(br); err != nil {
			return nil, err
		}

		err = u.repo.Update(ctx, br)
		if err == nil {
			return br, nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return nil, err
		}
		logger.WithBundleRental(id).Debug("Stale bundle rental version, retrying", "attempt", attempt+1, "version", br.Version)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, domain.NewConflictError("bundle rental %d kept changing, gave up after %d attempts", id, u.maxRetries+1)
}
