package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
)

// MockToolRepo
type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) ListByIDs(ctx context.Context, ids []int32) ([]*domain.Tool, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) ListActiveRentalIntervals(ctx context.Context, toolID int32) ([]domain.RentalInterval, error) {
	args := m.Called(ctx, toolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalInterval), args.Error(1)
}
func (m *MockToolRepo) ListBlackouts(ctx context.Context, toolID int32) ([]domain.Blackout, error) {
	args := m.Called(ctx, toolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Blackout), args.Error(1)
}

// MockBundleRepo
type MockBundleRepo struct {
	mock.Mock
}

func (m *MockBundleRepo) GetByID(ctx context.Context, id int32) (*domain.Bundle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bundle), args.Error(1)
}

// MockBundleRentalRepo
type MockBundleRentalRepo struct {
	mock.Mock
}

func (m *MockBundleRentalRepo) Create(ctx context.Context, br *domain.BundleRental) error {
	args := m.Called(ctx, br)
	return args.Error(0)
}
func (m *MockBundleRentalRepo) GetByID(ctx context.Context, id int32) (*domain.BundleRental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BundleRental), args.Error(1)
}
func (m *MockBundleRentalRepo) Update(ctx context.Context, br *domain.BundleRental) error {
	args := m.Called(ctx, br)
	return args.Error(0)
}
func (m *MockBundleRentalRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]int32, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}
func (m *MockBundleRentalRepo) ListByParticipant(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.BundleRental, int32, error) {
	args := m.Called(ctx, userID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.BundleRental), args.Get(1).(int32), args.Error(2)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) CreateForBundle(ctx context.Context, rentals []domain.Rental) error {
	args := m.Called(ctx, rentals)
	return args.Error(0)
}
func (m *MockRentalRepo) ListIDsByBundleRental(ctx context.Context, bundleRentalID int32) ([]int32, error) {
	args := m.Called(ctx, bundleRentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}
func (m *MockRentalRepo) UpdateStatusByBundleRental(ctx context.Context, bundleRentalID int32, status domain.RentalStatus) (int64, error) {
	args := m.Called(ctx, bundleRentalID, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Enqueue(ctx context.Context, req *domain.PaymentCaptureRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendEmail(ctx context.Context, to, toName, subject, plainText string) error {
	args := m.Called(ctx, to, toName, subject, plainText)
	return args.Error(0)
}

// MockPushSender
type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	args := m.Called(ctx, token, title, body, data)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event domain.BundleRentalEvent, br *domain.BundleRental, recipients []int32, detail string) {
	m.Called(ctx, event, br, recipients, detail)
}

// MockLimiter
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, userID int32) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

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
