package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

type bundleRepository struct {
	db *sql.DB
}

func NewBundleRepository(db *sql.DB) repository.BundleRepository {
	return &bundleRepository{db: db}
}

func (r *bundleRepository) GetByID(ctx context.Context, id int32) (*domain.Bundle, error) {
	b := &domain.Bundle{}
	query := `SELECT id, owner_id, name, description, discount_percentage, is_published, is_approved, created_on FROM bundles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.DiscountPercentage, &b.IsPublished, &b.IsApproved, &b.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("bundle", id)
	}
	if err != nil {
		return nil, err
	}

	itemsQuery := `SELECT id, bundle_id, tool_id, quantity_needed, is_optional, display_order, usage_notes
	               FROM bundle_items WHERE bundle_id = $1 ORDER BY display_order, id`
	rows, err := r.db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.BundleItem
		if err := rows.Scan(&item.ID, &item.BundleID, &item.ToolID, &item.QuantityNeeded, &item.IsOptional, &item.DisplayOrder, &item.UsageNotes); err != nil {
			return nil, err
		}
		b.Items = append(b.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b, nil
}
