package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

const bundleRentalColumns = `id, bundle_id, renter_id, start_date, end_date, total_cost_cents, discount_cents, deposit_cents, platform_fee_cents, final_cost_cents, status, renter_notes, owner_notes, cancel_reason, version, created_on, updated_on`

type bundleRentalRepository struct {
	db *sql.DB
}

func NewBundleRentalRepository(db *sql.DB) repository.BundleRentalRepository {
	return &bundleRentalRepository{db: db}
}

func scanBundleRental(row rowScanner) (*domain.BundleRental, error) {
	br := &domain.BundleRental{}
	err := row.Scan(&br.ID, &br.BundleID, &br.RenterID, &br.StartDate, &br.EndDate, &br.TotalCostCents, &br.DiscountCents, &br.DepositCents, &br.PlatformFeeCents, &br.FinalCostCents, &br.Status, &br.RenterNotes, &br.OwnerNotes, &br.CancelReason, &br.Version, &br.CreatedOn, &br.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return br, nil
}

func (r *bundleRentalRepository) Create(ctx context.Context, br *domain.BundleRental) error {
	logger.EnterMethod("bundleRentalRepository.Create", "bundleID", br.BundleID, "renterID", br.RenterID)

	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO bundle_rentals (bundle_id, renter_id, start_date, end_date, total_cost_cents, discount_cents, deposit_cents, platform_fee_cents, final_cost_cents, status, renter_notes, owner_notes, version, created_on, updated_on)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, $13, $14) RETURNING id, version`
		logger.DatabaseCall("INSERT", "bundle_rentals", "bundleID", br.BundleID)
		err := tx.QueryRowContext(ctx, query, br.BundleID, br.RenterID, br.StartDate, br.EndDate, br.TotalCostCents, br.DiscountCents, br.DepositCents, br.PlatformFeeCents, br.FinalCostCents, br.Status, br.RenterNotes, br.OwnerNotes, br.CreatedOn, br.UpdatedOn).Scan(&br.ID, &br.Version)
		if err != nil {
			return err
		}

		itemQuery := `INSERT INTO bundle_rental_items (bundle_rental_id, tool_id, owner_id, quantity, subtotal_cents, deposit_cents, is_optional)
		              VALUES ($1, $2, $3, $4, $5, $6, $7)`
		for _, item := range br.Items {
			if _, err := tx.ExecContext(ctx, itemQuery, br.ID, item.ToolID, item.OwnerID, item.Quantity, item.SubtotalCents, item.DepositCents, item.IsOptional); err != nil {
				return err
			}
		}

		decisionQuery := `INSERT INTO bundle_rental_decisions (bundle_rental_id, owner_id, decision, reason)
		                  VALUES ($1, $2, $3, $4) RETURNING id`
		for i := range br.Decisions {
			d := &br.Decisions[i]
			d.BundleRentalID = br.ID
			if err := tx.QueryRowContext(ctx, decisionQuery, br.ID, d.OwnerID, d.Decision, d.Reason).Scan(&d.ID); err != nil {
				return err
			}
		}
		return nil
	})
	logger.DatabaseResult("INSERT", 1, err, "bundleRentalID", br.ID, "decisions", len(br.Decisions))

	if err != nil {
		logger.ExitMethodWithError("bundleRentalRepository.Create", err, "bundleID", br.BundleID)
		return err
	}
	logger.ExitMethod("bundleRentalRepository.Create", "bundleRentalID", br.ID)
	return nil
}

func (r *bundleRentalRepository) GetByID(ctx context.Context, id int32) (*domain.BundleRental, error) {
	query := `SELECT ` + bundleRentalColumns + ` FROM bundle_rentals WHERE id = $1`
	br, err := scanBundleRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("bundle rental", id)
	}
	if err != nil {
		return nil, err
	}

	if br.Items, err = r.listItems(ctx, id); err != nil {
		return nil, err
	}
	if br.Decisions, err = r.listDecisions(ctx, id); err != nil {
		return nil, err
	}
	if br.ToolRentalIDs, err = listRentalIDs(ctx, r.db, id); err != nil {
		return nil, err
	}
	return br, nil
}

func (r *bundleRentalRepository) listItems(ctx context.Context, id int32) ([]domain.BundleRentalItem, error) {
	query := `SELECT tool_id, owner_id, quantity, subtotal_cents, deposit_cents, is_optional
	          FROM bundle_rental_items WHERE bundle_rental_id = $1 ORDER BY tool_id`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.BundleRentalItem
	for rows.Next() {
		var item domain.BundleRentalItem
		if err := rows.Scan(&item.ToolID, &item.OwnerID, &item.Quantity, &item.SubtotalCents, &item.DepositCents, &item.IsOptional); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *bundleRentalRepository) listDecisions(ctx context.Context, id int32) ([]domain.ApprovalDecision, error) {
	query := `SELECT id, bundle_rental_id, owner_id, decision, reason, decided_at
	          FROM bundle_rental_decisions WHERE bundle_rental_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []domain.ApprovalDecision
	for rows.Next() {
		var d domain.ApprovalDecision
		if err := rows.Scan(&d.ID, &d.BundleRentalID, &d.OwnerID, &d.Decision, &d.Reason, &d.DecidedAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func (r *bundleRentalRepository) Update(ctx context.Context, br *domain.BundleRental) error {
	logger.EnterMethod("bundleRentalRepository.Update", "bundleRentalID", br.ID, "version", br.Version, "status", br.Status)

	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `UPDATE bundle_rentals SET status=$1, owner_notes=$2, cancel_reason=$3, updated_on=$4, version = version + 1
		          WHERE id=$5 AND version=$6`
		logger.DatabaseCall("UPDATE", "bundle_rentals", "bundleRentalID", br.ID, "expectedVersion", br.Version)
		res, err := tx.ExecContext(ctx, query, br.Status, br.OwnerNotes, br.CancelReason, br.UpdatedOn, br.ID, br.Version)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		logger.DatabaseResult("UPDATE", n, nil, "bundleRentalID", br.ID)
		if n == 0 {
			return domain.ErrConcurrencyConflict
		}

		decisionQuery := `UPDATE bundle_rental_decisions SET decision=$1, reason=$2, decided_at=$3 WHERE id=$4 AND bundle_rental_id=$5`
		for _, d := range br.Decisions {
			if _, err := tx.ExecContext(ctx, decisionQuery, d.Decision, d.Reason, d.DecidedAt, d.ID, br.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bundleRentalRepository.Update", err, "bundleRentalID", br.ID)
		return err
	}

	br.Version++
	logger.ExitMethod("bundleRentalRepository.Update", "bundleRentalID", br.ID, "version", br.Version)
	return nil
}

func (r *bundleRentalRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]int32, error) {
	query, args, err := dialect.From("bundle_rentals").
		Select("id").
		Where(
			goqu.C("status").Eq(string(domain.BundleRentalStatusPending)),
			goqu.C("created_on").Lt(cutoff),
		).
		Order(goqu.C("created_on").Asc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build stale pending query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *bundleRentalRepository) ListByParticipant(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.BundleRental, int32, error) {
	offset := (page - 1) * pageSize
	sql := `SELECT ` + bundleRentalColumns + ` FROM bundle_rentals br
	        WHERE (br.renter_id = $1 OR EXISTS (SELECT 1 FROM bundle_rental_decisions d WHERE d.bundle_rental_id = br.id AND d.owner_id = $1))`

	args := []interface{}{userID}
	argIdx := 2
	if status != "" {
		sql += " AND br.status = $2"
		args = append(args, status)
		argIdx++
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + sql + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sql += fmt.Sprintf(" ORDER BY br.created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.BundleRental
	for rows.Next() {
		br, err := scanBundleRental(rows)
		if err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, *br)
	}
	return rentals, count, rows.Err()
}
