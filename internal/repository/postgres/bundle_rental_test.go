package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository/postgres"
)

var bundleRentalCols = []string{"id", "bundle_id", "renter_id", "start_date", "end_date", "total_cost_cents", "discount_cents", "deposit_cents", "platform_fee_cents", "final_cost_cents", "status", "renter_notes", "owner_notes", "cancel_reason", "version", "created_on", "updated_on"}

func newPendingRental() *domain.BundleRental {
	now := time.Now()
	return &domain.BundleRental{
		BundleID:       3,
		RenterID:       1,
		StartDate:      d("2025-03-10"),
		EndDate:        d("2025-03-13"),
		TotalCostCents: 7500,
		DiscountCents:  750,
		DepositCents:   3000,
		FinalCostCents: 9750,
		Status:         domain.BundleRentalStatusPending,
		Items: []domain.BundleRentalItem{
			{ToolID: 10, OwnerID: 20, Quantity: 1, SubtotalCents: 3000, DepositCents: 2000},
			{ToolID: 11, OwnerID: 21, Quantity: 1, SubtotalCents: 4500, DepositCents: 1000},
		},
		Decisions: []domain.ApprovalDecision{
			{OwnerID: 20, Decision: domain.DecisionPending},
			{OwnerID: 21, Decision: domain.DecisionPending},
		},
		CreatedOn: now,
		UpdatedOn: now,
	}
}

func TestBundleRentalRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBundleRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		br := newPendingRental()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO bundle_rentals").
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(55, 1))
		mock.ExpectExec("INSERT INTO bundle_rental_items").
			WithArgs(int32(55), int32(10), int32(20), int32(1), int64(3000), int64(2000), false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO bundle_rental_items").
			WithArgs(int32(55), int32(11), int32(21), int32(1), int64(4500), int64(1000), false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO bundle_rental_decisions").
			WithArgs(int32(55), int32(20), domain.DecisionPending, "").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
		mock.ExpectQuery("INSERT INTO bundle_rental_decisions").
			WithArgs(int32(55), int32(21), domain.DecisionPending, "").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
		mock.ExpectCommit()

		err := repo.Create(ctx, br)
		require.NoError(t, err)
		assert.Equal(t, int32(55), br.ID)
		assert.Equal(t, int32(1), br.Version)
		assert.Equal(t, int32(100), br.Decisions[0].ID)
		assert.Equal(t, int32(55), br.Decisions[1].BundleRentalID)
	})

	t.Run("Decision insert failure rolls back", func(t *testing.T) {
		br := newPendingRental()
		br.Items = nil

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO bundle_rentals").
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(56, 1))
		mock.ExpectQuery("INSERT INTO bundle_rental_decisions").
			WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		err := repo.Create(ctx, br)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBundleRentalRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBundleRentalRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bundle_rentals WHERE id = \\$1").
			WithArgs(int32(55)).
			WillReturnRows(sqlmock.NewRows(bundleRentalCols).
				AddRow(55, 3, 1, d("2025-03-10"), d("2025-03-13"), 7500, 750, 3000, 0, 9750, "APPROVED", "", "", "", 4, now, now))
		mock.ExpectQuery("SELECT (.+) FROM bundle_rental_items").
			WithArgs(int32(55)).
			WillReturnRows(sqlmock.NewRows([]string{"tool_id", "owner_id", "quantity", "subtotal_cents", "deposit_cents", "is_optional"}).
				AddRow(10, 20, 1, 3000, 2000, false))
		mock.ExpectQuery("SELECT (.+) FROM bundle_rental_decisions").
			WithArgs(int32(55)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "bundle_rental_id", "owner_id", "decision", "reason", "decided_at"}).
				AddRow(100, 55, 20, "APPROVED", "", now).
				AddRow(101, 55, 21, "APPROVED", "", now))
		mock.ExpectQuery("SELECT id FROM rentals WHERE bundle_rental_id = \\$1").
			WithArgs(int32(55)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(900).AddRow(901))

		br, err := repo.GetByID(ctx, 55)
		require.NoError(t, err)
		assert.Equal(t, domain.BundleRentalStatusApproved, br.Status)
		assert.Equal(t, int32(4), br.Version)
		assert.Len(t, br.Items, 1)
		assert.Len(t, br.Decisions, 2)
		assert.NotNil(t, br.Decisions[0].DecidedAt)
		assert.Equal(t, []int32{900, 901}, br.ToolRentalIDs)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bundle_rentals WHERE id = \\$1").
			WithArgs(int32(56)).
			WillReturnRows(sqlmock.NewRows(bundleRentalCols))

		_, err := repo.GetByID(ctx, 56)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBundleRentalRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBundleRentalRepository(db)
	ctx := context.Background()

	t.Run("Success bumps version", func(t *testing.T) {
		br := newPendingRental()
		br.ID = 55
		br.Version = 2
		br.Decisions[0].ID = 100
		br.Decisions[1].ID = 101
		br.Status = domain.BundleRentalStatusRejected

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bundle_rentals SET").
			WithArgs(domain.BundleRentalStatusRejected, "", "", sqlmock.AnyArg(), int32(55), int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE bundle_rental_decisions SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE bundle_rental_decisions SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Update(ctx, br)
		require.NoError(t, err)
		assert.Equal(t, int32(3), br.Version)
	})

	t.Run("Stale version", func(t *testing.T) {
		br := newPendingRental()
		br.ID = 55
		br.Version = 2

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bundle_rentals SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Update(ctx, br)
		assert.True(t, errors.Is(err, domain.ErrConcurrencyConflict))
		assert.Equal(t, int32(2), br.Version)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBundleRentalRepository_ListPendingCreatedBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBundleRentalRepository(db)

	mock.ExpectQuery(`SELECT "id" FROM "bundle_rentals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	ids, err := repo.ListPendingCreatedBefore(context.Background(), time.Now().Add(-48*time.Hour), 100)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, ids)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBundleRentalRepository_ListByParticipant(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBundleRentalRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM").
		WithArgs(int32(1), "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM bundle_rentals br").
		WithArgs(int32(1), "PENDING", int32(20), int32(0)).
		WillReturnRows(sqlmock.NewRows(bundleRentalCols).
			AddRow(55, 3, 1, d("2025-03-10"), d("2025-03-13"), 7500, 750, 3000, 0, 9750, "PENDING", "", "", "", 1, now, now))

	rentals, count, err := repo.ListByParticipant(context.Background(), 1, "PENDING", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int32(1), count)
	require.Len(t, rentals, 1)
	assert.Equal(t, int32(55), rentals[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
