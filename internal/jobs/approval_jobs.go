package jobs

import (
	"context"
	"time"

	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
)

const (
	expireLockName   = "expire-stale-approvals"
	expireJobTimeout = 5 * time.Minute
)

// ExpireStaleApprovals rejects pending bundle rentals whose owners did not all answer in time.
func (jr *JobRunner) ExpireStaleApprovals() {
	jr.runWithRecovery("ExpireStaleApprovals", func() {
		ctx, cancel := context.WithTimeout(context.Background(), expireJobTimeout)
		defer cancel()

		if _, err := jr.expireStaleApprovals(ctx); err != nil {
			logger.Error("Failed to expire stale approvals", "error", err)
		}
	})
}

func (jr *JobRunner) expireStaleApprovals(ctx context.Context) (int, error) {
	release, ok, err := jr.lock(ctx, expireLockName, expireJobTimeout)
	if err != nil {
		return 0, err
	}
	if !ok {
		logger.Info("Expiry already running on another instance, skipping")
		return 0, nil
	}
	defer release()

	// Partial failures still report how many were expired.
	expired, err := jr.services.Approval.ExpireStaleApprovals(ctx, jr.now().UTC())
	logger.Info("Expired stale bundle rental approvals", "count", expired)
	return expired, err
}
