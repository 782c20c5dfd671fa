package domain

import "github.com/shopspring/decimal"

type RateTier string

const (
	RateTierDaily   RateTier = "DAILY"
	RateTierWeekly  RateTier = "WEEKLY"
	RateTierMonthly RateTier = "MONTHLY"
)

// CostLine is the priced result of one bundle item. Amounts are in cents.
type CostLine struct {
	ToolID        int32    `json:"tool_id"`
	ToolName      string   `json:"tool_name"`
	OwnerID       int32    `json:"owner_id"`
	Tier          RateTier `json:"tier"`
	UnitRateCents int64    `json:"unit_rate_cents"`
	Periods       int64    `json:"periods"`
	Quantity      int32    `json:"quantity"`
	Days          int      `json:"days"`
	SubtotalCents int64    `json:"subtotal_cents"`
	DepositCents  int64    `json:"deposit_cents"`
	IsOptional    bool     `json:"is_optional"`
}

type CostBreakdown struct {
	BundleID              int32           `json:"bundle_id"`
	Range                 DateRange       `json:"range"`
	Days                  int             `json:"days"`
	Lines                 []CostLine      `json:"lines"`
	SubtotalCents         int64           `json:"subtotal_cents"`
	DiscountPercentage    decimal.Decimal `json:"discount_percentage"`
	DiscountCents         int64           `json:"discount_cents"`
	DepositTotalCents     int64           `json:"deposit_total_cents"`
	PlatformFeePercentage decimal.Decimal `json:"platform_fee_percentage"`
	PlatformFeeCents      int64           `json:"platform_fee_cents"`
	FinalTotalCents       int64           `json:"final_total_cents"`
}

// Items converts the priced lines into bundle rental items, one per tool. Lines that
// share a tool are merged; the merged item is optional only if every line was.
func (b *CostBreakdown) Items() []BundleRentalItem {
	items := make([]BundleRentalItem, 0, len(b.Lines))
	index := make(map[int32]int, len(b.Lines))
	for _, l := range b.Lines {
		if i, ok := index[l.ToolID]; ok {
			items[i].Quantity += l.Quantity
			items[i].SubtotalCents += l.SubtotalCents
			items[i].DepositCents += l.DepositCents
			items[i].IsOptional = items[i].IsOptional && l.IsOptional
			continue
		}
		index[l.ToolID] = len(items)
		items = append(items, BundleRentalItem{
			ToolID:        l.ToolID,
			OwnerID:       l.OwnerID,
			Quantity:      l.Quantity,
			SubtotalCents: l.SubtotalCents,
			DepositCents:  l.DepositCents,
			IsOptional:    l.IsOptional,
		})
	}
	return items
}
