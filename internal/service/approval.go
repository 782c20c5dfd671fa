package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

const (
	expireBatchSize        = 500
	paymentStatusRequested = "REQUESTED"
)

type approvalService struct {
	rentals     rentalUpdater
	toolRentals repository.RentalRepository
	payments    repository.PaymentCaptureRepository
	notifier    Notifier
	timeout     time.Duration
	clock       Clock
}

func NewApprovalService(
	bundleRentalRepo repository.BundleRentalRepository,
	toolRentals repository.RentalRepository,
	payments repository.PaymentCaptureRepository,
	notifier Notifier,
	approvalTimeout time.Duration,
	maxRetries int,
	clock Clock,
) ApprovalService {
	return &approvalService{
		rentals:     newRentalUpdater(bundleRentalRepo, maxRetries),
		toolRentals: toolRentals,
		payments:    payments,
		notifier:    notifier,
		timeout:     approvalTimeout,
		clock:       clock,
	}
}

func (s *approvalService) SubmitDecision(ctx context.Context, bundleRentalID, ownerID int32, decision domain.Decision, reason string) (domain.BundleRentalStatus, error) {
	logger.EnterMethod("approvalService.SubmitDecision", "bundleRentalID", bundleRentalID, "ownerID", ownerID, "decision", decision)

	if decision != domain.DecisionApproved && decision != domain.DecisionRejected {
		err := domain.NewValidationError("decision must be %s or %s, got %q", domain.DecisionApproved, domain.DecisionRejected, decision)
		logger.ExitMethodWithError("approvalService.SubmitDecision", err, "bundleRentalID", bundleRentalID)
		return "", err
	}
	if decision == domain.DecisionApproved {
		reason = ""
	}

	br, err := s.rentals.apply(ctx, bundleRentalID, func(br *domain.BundleRental) error {
		if br.Status != domain.BundleRentalStatusPending {
			return domain.NewConflictError("bundle rental %d is already %s", br.ID, br.Status)
		}
		slot := br.DecisionFor(ownerID)
		if slot == nil {
			return domain.NewValidationError("user %d is not an owner of bundle rental %d", ownerID, br.ID)
		}
		if slot.Decision != domain.DecisionPending {
			return domain.NewConflictError("owner %d already decided %s on bundle rental %d", ownerID, slot.Decision, br.ID)
		}

		now := s.clock.now()
		slot.Decision = decision
		slot.Reason = reason
		slot.DecidedAt = &now

		next := domain.ResolveDecisions(br.Decisions)
		if next == domain.BundleRentalStatusPending {
			br.UpdatedOn = now
			return nil
		}
		if next == domain.BundleRentalStatusRejected {
			br.OwnerNotes = reason
		}
		return br.TransitionTo(next, now)
	})
	if err != nil {
		logger.ExitMethodWithError("approvalService.SubmitDecision", err, "bundleRentalID", bundleRentalID, "ownerID", ownerID)
		return "", err
	}

	// Only the writer whose update committed the transition gets here with a resolved status.
	switch br.Status {
	case domain.BundleRentalStatusApproved:
		s.onApproved(ctx, br)
	case domain.BundleRentalStatusRejected:
		s.notifier.Notify(ctx, domain.EventRejected, br, participants(br), reason)
	default:
		s.notifier.Notify(ctx, domain.EventDecisionRecorded, br, []int32{br.RenterID}, fmt.Sprintf("owner %d approved", ownerID))
	}

	logger.ExitMethod("approvalService.SubmitDecision", "bundleRentalID", bundleRentalID, "status", br.Status, "version", br.Version)
	return br.Status, nil
}

// onApproved runs the follow-ups of the Pending to Approved transition. None of them
// can undo it; failures are logged for the compensating flows to pick up.
func (s *approvalService) onApproved(ctx context.Context, br *domain.BundleRental) {
	log := logger.WithBundleRental(br.ID)

	req := &domain.PaymentCaptureRequest{
		BundleRentalID: br.ID,
		AmountCents:    br.FinalCostCents,
		IdempotencyKey: uuid.NewString(),
		Status:         paymentStatusRequested,
		CreatedOn:      s.clock.now(),
	}
	created, err := s.payments.Enqueue(ctx, req)
	switch {
	case err != nil:
		log.Error("Failed to enqueue payment capture", "error", err, "amountCents", br.FinalCostCents)
	case !created:
		log.Warn("Payment capture already requested")
	default:
		log.Info("Payment capture requested", "paymentCaptureID", req.ID, "amountCents", req.AmountCents)
	}

	if err := s.toolRentals.CreateForBundle(ctx, toolRentalsFor(br)); err != nil {
		log.Error("Failed to issue tool rentals", "error", err)
	}

	s.notifier.Notify(ctx, domain.EventApproved, br, participants(br), "")
}

func toolRentalsFor(br *domain.BundleRental) []domain.Rental {
	id := br.ID
	rentals := make([]domain.Rental, 0, len(br.Items))
	for _, item := range br.Items {
		rentals = append(rentals, domain.Rental{
			ToolID:         item.ToolID,
			RenterID:       br.RenterID,
			OwnerID:        item.OwnerID,
			BundleRentalID: &id,
			StartDate:      br.StartDate,
			EndDate:        br.EndDate,
			Quantity:       item.Quantity,
			TotalCostCents: item.SubtotalCents,
			DepositCents:   item.DepositCents,
			Status:         domain.RentalStatusApproved,
			Notes:          fmt.Sprintf("Part of bundle rental #%d", br.ID),
		})
	}
	return rentals
}

func (s *approvalService) ExpireStaleApprovals(ctx context.Context, now time.Time) (int, error) {
	logger.EnterMethod("approvalService.ExpireStaleApprovals", "now", now, "timeout", s.timeout)

	cutoff := now.Add(-s.timeout)
	ids, err := s.rentals.repo.ListPendingCreatedBefore(ctx, cutoff, expireBatchSize)
	if err != nil {
		logger.ExitMethodWithError("approvalService.ExpireStaleApprovals", err)
		return 0, err
	}

	var errs []error
	expired := 0
	for _, id := range ids {
		br, err := s.rentals.apply(ctx, id, func(br *domain.BundleRental) error {
			if br.Status != domain.BundleRentalStatusPending {
				return domain.NewConflictError("bundle rental %d is already %s", br.ID, br.Status)
			}
			for i := range br.Decisions {
				d := &br.Decisions[i]
				if d.Decision != domain.DecisionPending {
					continue
				}
				d.Decision = domain.DecisionRejected
				d.Reason = domain.ApprovalTimeoutReason
				d.DecidedAt = &now
			}
			br.OwnerNotes = domain.ApprovalTimeoutReason
			return br.TransitionTo(domain.BundleRentalStatusRejected, now)
		})
		if errors.Is(err, domain.ErrConflict) {
			logger.WithBundleRental(id).Info("Skipping expiry, rental was resolved concurrently", "reason", err)
			continue
		}
		if err != nil {
			logger.WithBundleRental(id).Error("Failed to expire bundle rental", "error", err)
			errs = append(errs, fmt.Errorf("bundle rental %d: %w", id, err))
			continue
		}

		expired++
		s.notifier.Notify(ctx, domain.EventExpired, br, participants(br), domain.ApprovalTimeoutReason)
	}

	err = errors.Join(errs...)
	if err != nil {
		logger.ExitMethodWithError("approvalService.ExpireStaleApprovals", err, "expired", expired, "candidates", len(ids))
		return expired, err
	}
	logger.ExitMethod("approvalService.ExpireStaleApprovals", "expired", expired, "candidates", len(ids))
	return expired, nil
}

// participants lists the renter followed by every owner.
func participants(br *domain.BundleRental) []int32 {
	return append([]int32{br.RenterID}, br.OwnerIDs()...)
}
