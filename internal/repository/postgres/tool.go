package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

const toolColumns = `id, owner_id, name, price_per_day_cents, price_per_week_cents, price_per_month_cents, deposit_cents, duration_unit, lead_time_days, is_active, is_available_for_rent, created_on, deleted_on`

type toolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) repository.ToolRepository {
	return &toolRepository{db: db}
}

func scanTool(row rowScanner) (*domain.Tool, error) {
	t := &domain.Tool{}
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.PricePerDayCents, &t.PricePerWeekCents, &t.PricePerMonthCents, &t.DepositCents, &t.DurationUnit, &t.LeadTimeDays, &t.IsActive, &t.IsAvailableForRent, &t.CreatedOn, &t.DeletedOn)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1`
	t, err := scanTool(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("tool", id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *toolRepository) ListByIDs(ctx context.Context, ids []int32) ([]*domain.Tool, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tools := make([]*domain.Tool, 0, len(ids))
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// intervalsQuery selects the tool's blocking single rentals plus the bundle rentals that hold it
// but have not issued a single rental for it yet.
func intervalsQuery(toolID int32) (string, []any, error) {
	rentalStatuses := make([]string, 0, len(domain.BlockingRentalStatuses))
	for _, s := range domain.BlockingRentalStatuses {
		rentalStatuses = append(rentalStatuses, string(s))
	}
	bundleStatuses := []string{
		string(domain.BundleRentalStatusPending),
		string(domain.BundleRentalStatusApproved),
		string(domain.BundleRentalStatusActive),
	}

	rentals := dialect.From("rentals").
		Select(
			goqu.L(fmt.Sprintf("'%s'::text", domain.IntervalKindRental)).As("kind"),
			goqu.C("id"), goqu.C("start_date"), goqu.C("end_date"), goqu.C("status"),
		).
		Where(
			goqu.Ex{"tool_id": toolID, "status": rentalStatuses},
			goqu.C("end_date").Gte(goqu.L("CURRENT_DATE - 1")),
		)

	bundles := dialect.From(goqu.T("bundle_rental_items").As("bri")).
		Join(goqu.T("bundle_rentals").As("br"), goqu.On(goqu.I("br.id").Eq(goqu.I("bri.bundle_rental_id")))).
		Select(
			goqu.L(fmt.Sprintf("'%s'::text", domain.IntervalKindBundleRental)).As("kind"),
			goqu.I("br.id"), goqu.I("br.start_date"), goqu.I("br.end_date"), goqu.I("br.status"),
		).
		Where(
			goqu.I("bri.tool_id").Eq(toolID),
			goqu.I("br.status").In(bundleStatuses),
			goqu.I("br.end_date").Gte(goqu.L("CURRENT_DATE - 1")),
			goqu.L("NOT EXISTS (SELECT 1 FROM rentals r WHERE r.bundle_rental_id = br.id AND r.tool_id = bri.tool_id)"),
		)

	return rentals.UnionAll(bundles).Prepared(true).ToSQL()
}

func (r *toolRepository) ListActiveRentalIntervals(ctx context.Context, toolID int32) ([]domain.RentalInterval, error) {
	query, args, err := intervalsQuery(toolID)
	if err != nil {
		return nil, fmt.Errorf("failed to build interval query: %w", err)
	}
	logger.DatabaseCall("SELECT", "rentals+bundle_rentals", "toolID", toolID)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "toolID", toolID)
		return nil, err
	}
	defer rows.Close()

	var intervals []domain.RentalInterval
	for rows.Next() {
		iv := domain.RentalInterval{ToolID: toolID}
		if err := rows.Scan(&iv.Kind, &iv.ReferenceID, &iv.Start, &iv.End, &iv.Status); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(intervals)), nil, "toolID", toolID)

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})
	return intervals, nil
}

func (r *toolRepository) ListBlackouts(ctx context.Context, toolID int32) ([]domain.Blackout, error) {
	query := `SELECT id, tool_id, start_date, end_date, reason FROM tool_blackouts
	          WHERE tool_id = $1 AND end_date >= CURRENT_DATE - 1 ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blackouts []domain.Blackout
	for rows.Next() {
		var b domain.Blackout
		if err := rows.Scan(&b.ID, &b.ToolID, &b.Start, &b.End, &b.Reason); err != nil {
			return nil, err
		}
		blackouts = append(blackouts, b)
	}
	return blackouts, rows.Err()
}
