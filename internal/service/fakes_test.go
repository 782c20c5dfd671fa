package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
)

// memBundleRentals is a BundleRentalRepository with the same version check as the
// database, so concurrent writers really race.
type memBundleRentals struct {
	mu      sync.Mutex
	rentals map[int32]domain.BundleRental
	nextID  int32
}

func newMemBundleRentals(rentals ...domain.BundleRental) *memBundleRentals {
	m := &memBundleRentals{rentals: map[int32]domain.BundleRental{}}
	for _, br := range rentals {
		if br.Version == 0 {
			br.Version = 1
		}
		m.rentals[br.ID] = cloneRental(br)
		m.nextID = max(m.nextID, br.ID)
	}
	return m
}

func cloneRental(br domain.BundleRental) domain.BundleRental {
	br.Items = append([]domain.BundleRentalItem(nil), br.Items...)
	br.Decisions = append([]domain.ApprovalDecision(nil), br.Decisions...)
	br.ToolRentalIDs = append([]int32(nil), br.ToolRentalIDs...)
	return br
}

func (m *memBundleRentals) Create(_ context.Context, br *domain.BundleRental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	br.ID = m.nextID
	br.Version = 1
	m.rentals[br.ID] = cloneRental(*br)
	return nil
}

func (m *memBundleRentals) GetByID(_ context.Context, id int32) (*domain.BundleRental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	br, ok := m.rentals[id]
	if !ok {
		return nil, domain.NewNotFoundError("bundle rental", id)
	}
	c := cloneRental(br)
	return &c, nil
}

func (m *memBundleRentals) Update(_ context.Context, br *domain.BundleRental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rentals[br.ID]
	if !ok || cur.Version != br.Version {
		return domain.ErrConcurrencyConflict
	}
	br.Version++
	m.rentals[br.ID] = cloneRental(*br)
	return nil
}

func (m *memBundleRentals) ListPendingCreatedBefore(_ context.Context, cutoff time.Time, limit int) ([]int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int32
	for id, br := range m.rentals {
		if br.Status == domain.BundleRentalStatusPending && br.CreatedOn.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *memBundleRentals) ListByParticipant(_ context.Context, userID int32, status string, page, pageSize int32) ([]domain.BundleRental, int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BundleRental
	for _, br := range m.rentals {
		if br.IsParticipant(userID) && (status == "" || string(br.Status) == status) {
			out = append(out, cloneRental(br))
		}
	}
	return out, int32(len(out)), nil
}

// snapshot returns the stored state of a rental.
func (m *memBundleRentals) snapshot(id int32) domain.BundleRental {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRental(m.rentals[id])
}

// memPayments mimics the unique constraint on payment_capture_requests.bundle_rental_id.
type memPayments struct {
	mu       sync.Mutex
	byRental map[int32]domain.PaymentCaptureRequest
	calls    int
}

func newMemPayments() *memPayments {
	return &memPayments{byRental: map[int32]domain.PaymentCaptureRequest{}}
}

func (p *memPayments) Enqueue(_ context.Context, req *domain.PaymentCaptureRequest) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if _, ok := p.byRental[req.BundleRentalID]; ok {
		return false, nil
	}
	req.ID = int32(len(p.byRental) + 1)
	p.byRental[req.BundleRentalID] = *req
	return true, nil
}

func (p *memPayments) enqueueCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// memRentals records issued tool rentals.
type memRentals struct {
	mu       sync.Mutex
	issued   []domain.Rental
	statuses map[int32]domain.RentalStatus
}

func newMemRentals() *memRentals {
	return &memRentals{statuses: map[int32]domain.RentalStatus{}}
}

func (r *memRentals) CreateForBundle(_ context.Context, rentals []domain.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued = append(r.issued, rentals...)
	return nil
}

func (r *memRentals) ListIDsByBundleRental(_ context.Context, _ int32) ([]int32, error) {
	return nil, nil
}

func (r *memRentals) UpdateStatusByBundleRental(_ context.Context, id int32, status domain.RentalStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	return 1, nil
}

// recordingNotifier counts events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.BundleRentalEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event domain.BundleRentalEvent, _ *domain.BundleRental, _ []int32, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count(event domain.BundleRentalEvent) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == event {
			c++
		}
	}
	return c
}

// memCatalog serves bundles and tools for pricing and availability tests.
type memCatalog struct {
	bundles   map[int32]*domain.Bundle
	tools     map[int32]*domain.Tool
	intervals map[int32][]domain.RentalInterval
	blackouts map[int32][]domain.Blackout
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		bundles:   map[int32]*domain.Bundle{},
		tools:     map[int32]*domain.Tool{},
		intervals: map[int32][]domain.RentalInterval{},
		blackouts: map[int32][]domain.Blackout{},
	}
}

type memBundleRepo struct{ c *memCatalog }

func (r memBundleRepo) GetByID(_ context.Context, id int32) (*domain.Bundle, error) {
	b, ok := r.c.bundles[id]
	if !ok {
		return nil, domain.NewNotFoundError("bundle", id)
	}
	return b, nil
}

type memToolRepo struct{ c *memCatalog }

func (r memToolRepo) GetByID(_ context.Context, id int32) (*domain.Tool, error) {
	t, ok := r.c.tools[id]
	if !ok {
		return nil, domain.NewNotFoundError("tool", id)
	}
	return t, nil
}

func (r memToolRepo) ListByIDs(_ context.Context, ids []int32) ([]*domain.Tool, error) {
	var out []*domain.Tool
	for _, id := range ids {
		if t, ok := r.c.tools[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memToolRepo) ListActiveRentalIntervals(_ context.Context, id int32) ([]domain.RentalInterval, error) {
	return r.c.intervals[id], nil
}

func (r memToolRepo) ListBlackouts(_ context.Context, id int32) ([]domain.Blackout, error) {
	return r.c.blackouts[id], nil
}
