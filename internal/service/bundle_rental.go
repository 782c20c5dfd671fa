package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type bundleRentalService struct {
	bundleRepo   repository.BundleRepository
	rentalRepo   repository.BundleRentalRepository
	toolRentals  repository.RentalRepository
	rentals      rentalUpdater
	availability BundleAvailabilityService
	pricing      PricingEngine
	limiter      RequestLimiter
	notifier     Notifier
	clock        Clock
}

func NewBundleRentalService(
	bundleRepo repository.BundleRepository,
	rentalRepo repository.BundleRentalRepository,
	toolRentals repository.RentalRepository,
	availability BundleAvailabilityService,
	pricing PricingEngine,
	limiter RequestLimiter,
	notifier Notifier,
	maxRetries int,
	clock Clock,
) BundleRentalService {
	return &bundleRentalService{
		bundleRepo:   bundleRepo,
		rentalRepo:   rentalRepo,
		toolRentals:  toolRentals,
		rentals:      newRentalUpdater(rentalRepo, maxRetries),
		availability: availability,
		pricing:      pricing,
		limiter:      limiter,
		notifier:     notifier,
		clock:        clock,
	}
}

func (s *bundleRentalService) RequestBundleRental(ctx context.Context, renterID, bundleID int32, r domain.DateRange, optionalToolIDs []int32, notes string) (*domain.BundleRental, error) {
	logger.EnterMethod("bundleRentalService.RequestBundleRental", "renterID", renterID, "bundleID", bundleID, "start", r.Start, "end", r.End)

	br, err := s.request(ctx, renterID, bundleID, r, optionalToolIDs, notes)
	if err != nil {
		logger.ExitMethodWithError("bundleRentalService.RequestBundleRental", err, "renterID", renterID, "bundleID", bundleID)
		return nil, err
	}

	s.notifier.Notify(ctx, domain.EventSubmitted, br, br.OwnerIDs(), notes)

	logger.ExitMethod("bundleRentalService.RequestBundleRental", "bundleRentalID", br.ID, "finalCostCents", br.FinalCostCents)
	return br, nil
}

func (s *bundleRentalService) request(ctx context.Context, renterID, bundleID int32, r domain.DateRange, optionalToolIDs []int32, notes string) (*domain.BundleRental, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, renterID)
		if err != nil {
			// The limiter protects owners from spam; an outage should not block renting.
			logger.Warn("Rate limiter unavailable, allowing request", "renterID", renterID, "error", err)
		} else if !ok {
			return nil, fmt.Errorf("%w: too many bundle rental requests, try again later", domain.ErrRateLimited)
		}
	}

	bundle, err := s.bundleRepo.GetByID(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if !bundle.IsRentable() {
		return nil, domain.NewValidationError("bundle %d is not available for rent", bundleID)
	}
	if bundle.OwnerID == renterID {
		return nil, domain.NewValidationError("cannot rent your own bundle")
	}

	avail, err := s.availability.CheckBundleAvailability(ctx, bundleID, r)
	if err != nil {
		return nil, err
	}
	if avail.Status == domain.BundleUnavailable {
		return nil, domain.NewConflictError("bundle %d is unavailable from %s to %s", bundleID, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	for _, id := range optionalToolIDs {
		if res, ok := avail.Result(id); ok && !res.Available {
			return nil, &domain.ToolError{ToolID: id, Err: domain.NewConflictError("selected optional tool is unavailable: %s", res.Reason)}
		}
	}

	cost, err := s.pricing.CalculateBundleCost(ctx, bundleID, r, optionalToolIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	br := &domain.BundleRental{
		BundleID:         bundleID,
		RenterID:         renterID,
		StartDate:        r.Start,
		EndDate:          r.End,
		TotalCostCents:   cost.SubtotalCents,
		DiscountCents:    cost.DiscountCents,
		DepositCents:     cost.DepositTotalCents,
		PlatformFeeCents: cost.PlatformFeeCents,
		FinalCostCents:   cost.FinalTotalCents,
		Status:           domain.BundleRentalStatusPending,
		RenterNotes:      notes,
		Items:            cost.Items(),
		CreatedOn:        now,
		UpdatedOn:        now,
	}
	for _, ownerID := range domain.DistinctOwners(br.Items) {
		br.Decisions = append(br.Decisions, domain.ApprovalDecision{OwnerID: ownerID, Decision: domain.DecisionPending})
	}

	if err := s.rentalRepo.Create(ctx, br); err != nil {
		return nil, err
	}
	return br, nil
}

func (s *bundleRentalService) ConfirmPickup(ctx context.Context, bundleRentalID, actorID int32) (*domain.BundleRental, error) {
	return s.transition(ctx, "ConfirmPickup", bundleRentalID, actorID, lifecycleStep{
		to:          domain.BundleRentalStatusActive,
		toolStatus:  domain.RentalStatusActive,
		event:       domain.EventPickedUp,
		allowOwners: false,
	}, "")
}

func (s *bundleRentalService) ConfirmReturn(ctx context.Context, bundleRentalID, actorID int32) (*domain.BundleRental, error) {
	return s.transition(ctx, "ConfirmReturn", bundleRentalID, actorID, lifecycleStep{
		to:          domain.BundleRentalStatusCompleted,
		toolStatus:  domain.RentalStatusCompleted,
		event:       domain.EventCompleted,
		allowOwners: true,
	}, "")
}

func (s *bundleRentalService) CancelBundleRental(ctx context.Context, bundleRentalID, actorID int32, reason string) (*domain.BundleRental, error) {
	return s.transition(ctx, "CancelBundleRental", bundleRentalID, actorID, lifecycleStep{
		to:          domain.BundleRentalStatusCancelled,
		toolStatus:  domain.RentalStatusCancelled,
		event:       domain.EventCancelled,
		allowOwners: true,
	}, reason)
}

type lifecycleStep struct {
	to          domain.BundleRentalStatus
	toolStatus  domain.RentalStatus
	event       domain.BundleRentalEvent
	allowOwners bool
}

func (s *bundleRentalService) transition(ctx context.Context, op string, bundleRentalID, actorID int32, step lifecycleStep, reason string) (*domain.BundleRental, error) {
	method := "bundleRentalService." + op
	logger.EnterMethod(method, "bundleRentalID", bundleRentalID, "actorID", actorID)

	br, err := s.rentals.apply(ctx, bundleRentalID, func(br *domain.BundleRental) error {
		if br.RenterID != actorID && (!step.allowOwners || br.DecisionFor(actorID) == nil) {
			return fmt.Errorf("%w: user %d cannot %s bundle rental %d", domain.ErrPermissionDenied, actorID, op, br.ID)
		}
		if err := br.TransitionTo(step.to, s.clock.now()); err != nil {
			return err
		}
		if step.to == domain.BundleRentalStatusCancelled {
			br.CancelReason = reason
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, "bundleRentalID", bundleRentalID)
		return nil, err
	}

	n, err := s.toolRentals.UpdateStatusByBundleRental(ctx, br.ID, step.toolStatus)
	if err != nil {
		logger.WithBundleRental(br.ID).Error("Failed to update tool rentals", "error", err, "status", step.toolStatus)
	} else {
		logger.WithBundleRental(br.ID).Debug("Updated tool rentals", "status", step.toolStatus, "count", n)
	}

	recipients := make([]int32, 0, len(br.Decisions)+1)
	for _, id := range participants(br) {
		if id != actorID {
			recipients = append(recipients, id)
		}
	}
	s.notifier.Notify(ctx, step.event, br, recipients, reason)

	logger.ExitMethod(method, "bundleRentalID", br.ID, "status", br.Status)
	return br, nil
}

func (s *bundleRentalService) GetBundleRental(ctx context.Context, userID, bundleRentalID int32) (*domain.BundleRental, error) {
	br, err := s.rentalRepo.GetByID(ctx, bundleRentalID)
	if err != nil {
		return nil, err
	}
	if !br.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: user %d is not part of bundle rental %d", domain.ErrPermissionDenied, userID, bundleRentalID)
	}
	return br, nil
}

func (s *bundleRentalService) ListMyBundleRentals(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.BundleRental, int32, error) {
	if status != "" && !knownStatus(domain.BundleRentalStatus(status)) {
		return nil, 0, domain.NewValidationError("unknown bundle rental status %q", status)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	rentals, count, err := s.rentalRepo.ListByParticipant(ctx, userID, status, page, pageSize)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Failed to list bundle rentals", "userID", userID, "error", err)
	}
	return rentals, count, err
}

func knownStatus(s domain.BundleRentalStatus) bool {
	switch s {
	case domain.BundleRentalStatusPending, domain.BundleRentalStatusApproved, domain.BundleRentalStatusActive,
		domain.BundleRentalStatusCompleted, domain.BundleRentalStatusRejected, domain.BundleRentalStatusCancelled:
		return true
	}
	return false
}
