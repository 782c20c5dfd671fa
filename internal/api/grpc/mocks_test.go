package grpc

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
)

// MockBundleAvailability
type MockBundleAvailability struct {
	mock.Mock
}

func (m *MockBundleAvailability) CheckBundleAvailability(ctx context.Context, bundleID int32, r domain.DateRange) (*domain.BundleAvailabilityResult, error) {
	args := m.Called(ctx, bundleID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BundleAvailabilityResult), args.Error(1)
}

// MockPricingEngine
type MockPricingEngine struct {
	mock.Mock
}

func (m *MockPricingEngine) CalculateBundleCost(ctx context.Context, bundleID int32, r domain.DateRange, optionalToolIDs []int32) (*domain.CostBreakdown, error) {
	args := m.Called(ctx, bundleID, r, optionalToolIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CostBreakdown), args.Error(1)
}

// MockApprovalService
type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) SubmitDecision(ctx context.Context, bundleRentalID, ownerID int32, decision domain.Decision, reason string) (domain.BundleRentalStatus, error) {
	args := m.Called(ctx, bundleRentalID, ownerID, decision, reason)
	return args.Get(0).(domain.BundleRentalStatus), args.Error(1)
}

func (m *MockApprovalService) ExpireStaleApprovals(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

// MockBundleRentalService
type MockBundleRentalService struct {
	mock.Mock
}

func (m *MockBundleRentalService) rental(args mock.Arguments) (*domain.BundleRental, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BundleRental), args.Error(1)
}

func (m *MockBundleRentalService) RequestBundleRental(ctx context.Context, renterID, bundleID int32, r domain.DateRange, optionalToolIDs []int32, notes string) (*domain.BundleRental, error) {
	return m.rental(m.Called(ctx, renterID, bundleID, r, optionalToolIDs, notes))
}

func (m *MockBundleRentalService) ConfirmPickup(ctx context.Context, bundleRentalID, actorID int32) (*domain.BundleRental, error) {
	return m.rental(m.Called(ctx, bundleRentalID, actorID))
}

func (m *MockBundleRentalService) ConfirmReturn(ctx context.Context, bundleRentalID, actorID int32) (*domain.BundleRental, error) {
	return m.rental(m.Called(ctx, bundleRentalID, actorID))
}

func (m *MockBundleRentalService) CancelBundleRental(ctx context.Context, bundleRentalID, actorID int32, reason string) (*domain.BundleRental, error) {
	return m.rental(m.Called(ctx, bundleRentalID, actorID, reason))
}

func (m *MockBundleRentalService) GetBundleRental(ctx context.Context, userID, bundleRentalID int32) (*domain.BundleRental, error) {
	return m.rental(m.Called(ctx, userID, bundleRentalID))
}

func (m *MockBundleRentalService) ListMyBundleRentals(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.BundleRental, int32, error) {
	args := m.Called(ctx, userID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.BundleRental), args.Get(1).(int32), args.Error(2)
}
