package repository

import (
	"context"
	"time"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type ToolRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	// ListByIDs returns the tools that exist, deleted ones included; missing ids are simply absent.
	ListByIDs(ctx context.Context, ids []int32) ([]*domain.Tool, error)
	// ListActiveRentalIntervals returns the tool's rentals in a blocking status and
	// the pending bundle rentals that include the tool.
	ListActiveRentalIntervals(ctx context.Context, toolID int32) ([]domain.RentalInterval, error)
	ListBlackouts(ctx context.Context, toolID int32) ([]domain.Blackout, error)
}

type BundleRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Bundle, error)
}

type BundleRentalRepository interface {
	// Create stores the rental with its items and decision slots in one transaction.
	Create(ctx context.Context, br *domain.BundleRental) error
	GetByID(ctx context.Context, id int32) (*domain.BundleRental, error)
	// Update writes status, notes and decisions if br.Version is still current, then bumps it.
	// A stale version yields domain.ErrConcurrencyConflict.
	Update(ctx context.Context, br *domain.BundleRental) error
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]int32, error)
	ListByParticipant(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.BundleRental, int32, error)
}

type RentalRepository interface {
	// CreateForBundle issues the individual tool rentals of an approved bundle rental.
	CreateForBundle(ctx context.Context, rentals []domain.Rental) error
	ListIDsByBundleRental(ctx context.Context, bundleRentalID int32) ([]int32, error)
	UpdateStatusByBundleRental(ctx context.Context, bundleRentalID int32, status domain.RentalStatus) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
}

type PaymentCaptureRepository interface {
	// Enqueue records a capture request. created is false when one already exists for the rental.
	Enqueue(ctx context.Context, req *domain.PaymentCaptureRequest) (created bool, err error)
}
