package domain

import "time"

type ToolDurationUnit string

const (
	ToolDurationUnitDay   ToolDurationUnit = "day"
	ToolDurationUnitWeek  ToolDurationUnit = "week"
	ToolDurationUnitMonth ToolDurationUnit = "month"
)

type Tool struct {
	ID                 int32            `json:"id"`
	OwnerID            int32            `json:"owner_id"`
	Name               string           `json:"name"`
	PricePerDayCents   int32            `json:"price_per_day_cents"`
	PricePerWeekCents  int32            `json:"price_per_week_cents"`
	PricePerMonthCents int32            `json:"price_per_month_cents"`
	DepositCents       int32            `json:"deposit_cents"`
	DurationUnit       ToolDurationUnit `json:"duration_unit"`
	// LeadTimeDays is the minimum notice the owner needs; 0 falls back to the configured default.
	LeadTimeDays       int32      `json:"lead_time_days"`
	IsActive           bool       `json:"is_active"`
	IsAvailableForRent bool       `json:"is_available_for_rent"`
	CreatedOn          time.Time  `json:"created_on"`
	DeletedOn          *time.Time `json:"deleted_on,omitempty"`
}

// IsDeleted reports whether the tool was soft-deleted.
func (t *Tool) IsDeleted() bool {
	return t.DeletedOn != nil
}

type IntervalKind string

const (
	IntervalKindRental       IntervalKind = "RENTAL"
	IntervalKindBundleRental IntervalKind = "BUNDLE_RENTAL"
	IntervalKindBlackout     IntervalKind = "BLACKOUT"
)

// RentalInterval is a span during which a tool is committed to someone.
type RentalInterval struct {
	Kind        IntervalKind `json:"kind"`
	ReferenceID int32        `json:"reference_id"`
	ToolID      int32        `json:"tool_id"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	Status      string       `json:"status,omitempty"`
}

func (i RentalInterval) Range() DateRange {
	return DateRange{Start: i.Start, End: i.End}
}

// Blackout is an owner-configured period where the tool cannot be rented.
type Blackout struct {
	ID     int32     `json:"id"`
	ToolID int32     `json:"tool_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
}

func (b Blackout) Interval() RentalInterval {
	return RentalInterval{
		Kind:        IntervalKindBlackout,
		ReferenceID: b.ID,
		ToolID:      b.ToolID,
		Start:       b.Start,
		End:         b.End,
	}
}

// ToolSchedule is everything needed to answer availability questions for one tool.
type ToolSchedule struct {
	Tool      *Tool
	Intervals []RentalInterval
	Blackouts []Blackout
}
