package domain

import "time"

const day = 24 * time.Hour

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that the range is non-empty.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return NewValidationError("start and end dates are required")
	}
	if !r.Start.Before(r.End) {
		return NewValidationError("start date %s must be before end date %s",
			r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	}
	return nil
}

// Days returns the rental length in days, partial days rounded up, minimum 1.
func (r DateRange) Days() int {
	d := r.End.Sub(r.Start)
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// Overlaps uses half-open semantics, so a range ending on D does not overlap one starting on D.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Shift moves the range by whole days keeping its length.
func (r DateRange) Shift(days int) DateRange {
	return DateRange{Start: r.Start.AddDate(0, 0, days), End: r.End.AddDate(0, 0, days)}
}

type AvailabilityReason string

const (
	ReasonAvailable      AvailabilityReason = "AVAILABLE"
	ReasonRentalConflict AvailabilityReason = "RENTAL_CONFLICT"
	ReasonBlackout       AvailabilityReason = "BLACKOUT"
	ReasonToolInactive   AvailabilityReason = "TOOL_INACTIVE"
	ReasonNotRentable    AvailabilityReason = "NOT_RENTABLE"
	ReasonLeadTime       AvailabilityReason = "LEAD_TIME"
)

type AvailabilityResult struct {
	ToolID    int32              `json:"tool_id"`
	Available bool               `json:"available"`
	Required  bool               `json:"required"`
	Reason    AvailabilityReason `json:"reason"`
	Conflicts []RentalInterval   `json:"conflicts,omitempty"`
	// EarliestStart is set when the request violated the tool's lead time.
	EarliestStart *time.Time `json:"earliest_start,omitempty"`
}

type BundleAvailabilityStatus string

const (
	BundleFullyAvailable     BundleAvailabilityStatus = "FULLY_AVAILABLE"
	BundlePartiallyAvailable BundleAvailabilityStatus = "PARTIALLY_AVAILABLE"
	BundleUnavailable        BundleAvailabilityStatus = "UNAVAILABLE"
)

type BundleAvailabilityResult struct {
	BundleID    int32                    `json:"bundle_id"`
	Requested   DateRange                `json:"requested"`
	Status      BundleAvailabilityStatus `json:"status"`
	Tools       []AvailabilityResult     `json:"tools"`
	Suggestions []DateRange              `json:"suggestions"`
}

// Result returns the per-tool result for toolID.
func (r *BundleAvailabilityResult) Result(toolID int32) (AvailabilityResult, bool) {
	for _, t := range r.Tools {
		if t.ToolID == toolID {
			return t, true
		}
	}
	return AvailabilityResult{}, false
}

// ClassifyBundle derives the bundle status from per-tool results.
// Any unavailable required tool makes the bundle unavailable; unavailable optional tools only degrade it.
// A required tool that is unavailable yields BundleUnavailable even when other tools are free;
// a bundle missing a required tool cannot be rented, so this must not become BundlePartiallyAvailable.
func ClassifyBundle(results []AvailabilityResult) BundleAvailabilityStatus {
	status := BundleFullyAvailable
	for _, r := range results {
		if r.Available {
			continue
		}
		if r.Required {
			return BundleUnavailable
		}
		status = BundlePartiallyAvailable
	}
	return status
}
