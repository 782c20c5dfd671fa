package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *rentalRepository) CreateForBundle(ctx context.Context, rentals []domain.Rental) error {
	if len(rentals) == 0 {
		return nil
	}
	query := `INSERT INTO rentals (tool_id, renter_id, owner_id, bundle_rental_id, start_date, end_date, quantity, total_cost_cents, deposit_cents, status, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          ON CONFLICT (bundle_rental_id, tool_id) DO NOTHING`

	var inserted int64
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		now := time.Now()
		for _, rt := range rentals {
			res, err := tx.ExecContext(ctx, query, rt.ToolID, rt.RenterID, rt.OwnerID, rt.BundleRentalID, rt.StartDate, rt.EndDate, rt.Quantity, rt.TotalCostCents, rt.DepositCents, rt.Status, rt.Notes, now, now)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			inserted += n
		}
		return nil
	})
	logger.DatabaseResult("INSERT", inserted, err, "table", "rentals")
	return err
}

func (r *rentalRepository) ListIDsByBundleRental(ctx context.Context, bundleRentalID int32) ([]int32, error) {
	return listRentalIDs(ctx, r.db, bundleRentalID)
}

func listRentalIDs(ctx context.Context, q queryer, bundleRentalID int32) ([]int32, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM rentals WHERE bundle_rental_id = $1 ORDER BY id`, bundleRentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *rentalRepository) UpdateStatusByBundleRental(ctx context.Context, bundleRentalID int32, status domain.RentalStatus) (int64, error) {
	query := `UPDATE rentals SET status=$1, updated_on=$2 WHERE bundle_rental_id=$3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), bundleRentalID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
