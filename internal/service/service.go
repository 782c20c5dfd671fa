package service

import (
	"context"
	"time"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
)

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, toolID int32, r domain.DateRange) (*domain.AvailabilityResult, error)
	// LoadSchedule reads a tool with its blocking intervals and blackouts.
	LoadSchedule(ctx context.Context, toolID int32) (*domain.ToolSchedule, error)
	// Evaluate answers an availability question against an already loaded schedule.
	Evaluate(schedule *domain.ToolSchedule, r domain.DateRange) domain.AvailabilityResult
}

type BundleAvailabilityService interface {
	CheckBundleAvailability(ctx context.Context, bundleID int32, r domain.DateRange) (*domain.BundleAvailabilityResult, error)
}

type PricingEngine interface {
	CalculateBundleCost(ctx context.Context, bundleID int32, r domain.DateRange, optionalToolIDs []int32) (*domain.CostBreakdown, error)
}

type ApprovalService interface {
	SubmitDecision(ctx context.Context, bundleRentalID, ownerID int32, decision domain.Decision, reason string) (domain.BundleRentalStatus, error)
	// ExpireStaleApprovals rejects pending rentals older than the approval timeout and returns how many it expired.
	ExpireStaleApprovals(ctx context.Context, now time.Time) (int, error)
}

type BundleRentalService interface {
	RequestBundleRental(ctx context.Context, renterID, bundleID int32, r domain.DateRange, optionalToolIDs []int32, notes string) (*domain.BundleRental, error)
	ConfirmPickup(ctx context.Context, bundleRentalID, actorID int32) (*domain.BundleRental, error)
	ConfirmReturn(ctx context.Context, bundleRentalID, actorID int32) (*domain.BundleRental, error)
	CancelBundleRental(ctx context.Context, bundleRentalID, actorID int32, reason string) (*domain.BundleRental, error)
	GetBundleRental(ctx context.Context, userID, bundleRentalID int32) (*domain.BundleRental, error)
	ListMyBundleRentals(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.BundleRental, int32, error)
}

// Notifier fans a bundle rental event out to its recipients. Delivery failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, event domain.BundleRentalEvent, br *domain.BundleRental, recipients []int32, detail string)
}

type EmailService interface {
	SendEmail(ctx context.Context, to, toName, subject, plainText string) error
}

// RequestLimiter caps how many bundle rentals a renter may request per hour.
type RequestLimiter interface {
	Allow(ctx context.Context, userID int32) (bool, error)
}
