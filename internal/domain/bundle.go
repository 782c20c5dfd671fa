package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	MinBundleDiscount = decimal.Zero
	MaxBundleDiscount = decimal.NewFromInt(50)
)

type Bundle struct {
	ID                 int32           `json:"id"`
	OwnerID            int32           `json:"owner_id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	IsPublished        bool            `json:"is_published"`
	IsApproved         bool            `json:"is_approved"`
	Items              []BundleItem    `json:"items"`
	CreatedOn          time.Time       `json:"created_on"`
}

type BundleItem struct {
	ID             int32  `json:"id"`
	BundleID       int32  `json:"bundle_id"`
	ToolID         int32  `json:"tool_id"`
	QuantityNeeded int32  `json:"quantity_needed"`
	IsOptional     bool   `json:"is_optional"`
	DisplayOrder   int32  `json:"display_order"`
	UsageNotes     string `json:"usage_notes"`
}

// Validate checks the rules a bundle must satisfy to be rented or priced.
func (b *Bundle) Validate() error {
	if b.DiscountPercentage.LessThan(MinBundleDiscount) || b.DiscountPercentage.GreaterThan(MaxBundleDiscount) {
		return NewValidationError("bundle %d discount %s%% outside [0,50]", b.ID, b.DiscountPercentage.String())
	}
	required := 0
	for _, item := range b.Items {
		if item.QuantityNeeded < 1 {
			return NewValidationError("bundle %d item for tool %d needs a quantity of at least 1", b.ID, item.ToolID)
		}
		if !item.IsOptional {
			required++
		}
	}
	if required == 0 {
		return NewValidationError("bundle %d has no required items", b.ID)
	}
	return nil
}

// IsRentable reports whether renters may request the bundle.
func (b *Bundle) IsRentable() bool {
	return b.IsPublished && b.IsApproved
}

// SortItems orders items by display order, then id.
func (b *Bundle) SortItems() {
	sort.SliceStable(b.Items, func(i, j int) bool {
		if b.Items[i].DisplayOrder != b.Items[j].DisplayOrder {
			return b.Items[i].DisplayOrder < b.Items[j].DisplayOrder
		}
		return b.Items[i].ID < b.Items[j].ID
	})
}

// ToolRequirements maps each distinct tool to whether any item needs it.
func (b *Bundle) ToolRequirements() map[int32]bool {
	reqs := make(map[int32]bool, len(b.Items))
	for _, item := range b.Items {
		reqs[item.ToolID] = reqs[item.ToolID] || !item.IsOptional
	}
	return reqs
}

// DistinctToolIDs returns the tools referenced by the bundle in display order.
func (b *Bundle) DistinctToolIDs() []int32 {
	seen := make(map[int32]struct{}, len(b.Items))
	ids := make([]int32, 0, len(b.Items))
	for _, item := range b.Items {
		if _, ok := seen[item.ToolID]; ok {
			continue
		}
		seen[item.ToolID] = struct{}{}
		ids = append(ids, item.ToolID)
	}
	return ids
}

// SelectItems returns the required items plus the optional items whose tool was selected.
// Selecting a tool that is not an optional item of the bundle is a validation error.
func (b *Bundle) SelectItems(optionalToolIDs []int32) ([]BundleItem, error) {
	selected := make(map[int32]bool, len(optionalToolIDs))
	for _, id := range optionalToolIDs {
		selected[id] = false
	}

	items := make([]BundleItem, 0, len(b.Items))
	for _, item := range b.Items {
		if !item.IsOptional {
			items = append(items, item)
			continue
		}
		if _, ok := selected[item.ToolID]; ok {
			selected[item.ToolID] = true
			items = append(items, item)
		}
	}

	for id, matched := range selected {
		if !matched {
			return nil, &ToolError{ToolID: id, Err: NewValidationError("not an optional item of bundle %d", b.ID)}
		}
	}
	return items, nil
}
