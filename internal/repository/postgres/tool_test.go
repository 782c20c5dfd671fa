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

var toolCols = []string{"id", "owner_id", "name", "price_per_day_cents", "price_per_week_cents", "price_per_month_cents", "deposit_cents", "duration_unit", "lead_time_days", "is_active", "is_available_for_rent", "created_on", "deleted_on"}

func d(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestToolRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(toolCols).
			AddRow(1, 10, "Drill", 1000, 5000, 0, 2000, "day", 2, true, true, time.Now(), nil)
		mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1").
			WithArgs(int32(1)).
			WillReturnRows(rows)

		tool, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int32(10), tool.OwnerID)
		assert.Equal(t, int32(2000), tool.DepositCents)
		assert.Equal(t, domain.ToolDurationUnitDay, tool.DurationUnit)
		assert.Equal(t, int32(2), tool.LeadTimeDays)
		assert.True(t, tool.IsAvailableForRent)
		assert.False(t, tool.IsDeleted())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows(toolCols))

		_, err := repo.GetByID(ctx, 2)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRepository_ListByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)

	deleted := time.Now()
	rows := sqlmock.NewRows(toolCols).
		AddRow(1, 10, "Drill", 1000, 0, 0, 0, "day", 0, true, true, time.Now(), nil).
		AddRow(2, 11, "Saw", 1500, 0, 0, 1000, "day", 0, true, true, time.Now(), deleted)
	mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = ANY\\(\\$1\\)").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	tools, err := repo.ListByIDs(context.Background(), []int32{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.True(t, tools[1].IsDeleted())

	empty, err := repo.ListByIDs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, empty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRepository_ListActiveRentalIntervals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)

	rows := sqlmock.NewRows([]string{"kind", "id", "start_date", "end_date", "status"}).
		AddRow("BUNDLE_RENTAL", 7, d("2025-03-20"), d("2025-03-22"), "PENDING").
		AddRow("RENTAL", 3, d("2025-03-10"), d("2025-03-15"), "APPROVED")
	mock.ExpectQuery("UNION ALL").WillReturnRows(rows)

	intervals, err := repo.ListActiveRentalIntervals(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, intervals, 2)

	assert.Equal(t, domain.IntervalKindRental, intervals[0].Kind)
	assert.Equal(t, int32(3), intervals[0].ReferenceID)
	assert.Equal(t, int32(5), intervals[0].ToolID)
	assert.Equal(t, domain.IntervalKindBundleRental, intervals[1].Kind)
	assert.Equal(t, "PENDING", intervals[1].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRepository_ListBlackouts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM tool_blackouts").
		WithArgs(int32(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tool_id", "start_date", "end_date", "reason"}).
			AddRow(1, 5, d("2025-04-01"), d("2025-04-08"), "owner away"))

	blackouts, err := repo.ListBlackouts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, blackouts, 1)
	assert.Equal(t, "owner away", blackouts[0].Reason)
	assert.Equal(t, domain.IntervalKindBlackout, blackouts[0].Interval().Kind)

	assert.NoError(t, mock.ExpectationsWereMet())
}
