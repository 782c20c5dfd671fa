package grpc

import (
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/utils"
)

const dateLayout = "2006-01-02"

// Request readers

func int32Field(req *structpb.Struct, name string) (int32, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return toInt32(name, v)
}

func optionalInt32Field(req *structpb.Struct, name string) (int32, error) {
	if _, ok := req.GetFields()[name]; !ok {
		return 0, nil
	}
	return int32Field(req, name)
}

func toInt32(name string, v *structpb.Value) (int32, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a 32-bit integer", name)
	}
	return int32(f), nil
}

func stringField(req *structpb.Struct, name string) string {
	return strings.TrimSpace(req.GetFields()[name].GetStringValue())
}

func int32ListField(req *structpb.Struct, name string) ([]int32, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a list", name)
	}
	ids := make([]int32, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		id, err := toInt32(fmt.Sprintf("%s[%d]", name, i), item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// dateRangeFields reads start_date and end_date as YYYY-MM-DD in UTC.
func dateRangeFields(req *structpb.Struct) (domain.DateRange, error) {
	start, err := parseDate("start_date", stringField(req, "start_date"))
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := parseDate("end_date", stringField(req, "end_date"))
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.DateRange{Start: start, End: end}, nil
}

func parseDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, domain.NewValidationError("%s is required", name)
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, domain.NewValidationError("%s: %v", name, err)
	}
	return t, nil
}

// Response mapping. Values must be types structpb.NewValue understands.

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func MapDateRange(r domain.DateRange) map[string]any {
	return map[string]any{
		"start_date": formatDate(r.Start),
		"end_date":   formatDate(r.End),
	}
}

func MapAvailabilityResult(r domain.AvailabilityResult) map[string]any {
	m := map[string]any{
		"tool_id":   r.ToolID,
		"available": r.Available,
		"required":  r.Required,
		"reason":    string(r.Reason),
	}
	if len(r.Conflicts) > 0 {
		conflicts := make([]any, 0, len(r.Conflicts))
		for _, c := range r.Conflicts {
			conflicts = append(conflicts, map[string]any{
				"kind":         string(c.Kind),
				"reference_id": c.ReferenceID,
				"start_date":   formatDate(c.Start),
				"end_date":     formatDate(c.End),
			})
		}
		m["conflicts"] = conflicts
	}
	if r.EarliestStart != nil {
		m["earliest_start"] = formatDate(*r.EarliestStart)
	}
	return m
}

func MapBundleAvailability(r *domain.BundleAvailabilityResult) map[string]any {
	tools := make([]any, 0, len(r.Tools))
	for _, t := range r.Tools {
		tools = append(tools, MapAvailabilityResult(t))
	}
	suggestions := make([]any, 0, len(r.Suggestions))
	for _, s := range r.Suggestions {
		suggestions = append(suggestions, MapDateRange(s))
	}
	return map[string]any{
		"bundle_id":   r.BundleID,
		"requested":   MapDateRange(r.Requested),
		"status":      string(r.Status),
		"tools":       tools,
		"suggestions": suggestions,
	}
}

func MapCostBreakdown(b *domain.CostBreakdown) map[string]any {
	lines := make([]any, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, map[string]any{
			"tool_id":         l.ToolID,
			"tool_name":       l.ToolName,
			"owner_id":        l.OwnerID,
			"tier":            string(l.Tier),
			"unit_rate_cents": l.UnitRateCents,
			"periods":         l.Periods,
			"quantity":        l.Quantity,
			"days":            l.Days,
			"subtotal_cents":  l.SubtotalCents,
			"deposit_cents":   l.DepositCents,
			"is_optional":     l.IsOptional,
		})
	}
	return map[string]any{
		"bundle_id":               b.BundleID,
		"range":                   MapDateRange(b.Range),
		"days":                    b.Days,
		"lines":                   lines,
		"subtotal_cents":          b.SubtotalCents,
		"discount_percentage":     b.DiscountPercentage.String(),
		"discount_cents":          b.DiscountCents,
		"deposit_total_cents":     b.DepositTotalCents,
		"platform_fee_percentage": b.PlatformFeePercentage.String(),
		"platform_fee_cents":      b.PlatformFeeCents,
		"final_total_cents":       b.FinalTotalCents,
	}
}

func MapBundleRental(br *domain.BundleRental) map[string]any {
	items := make([]any, 0, len(br.Items))
	for _, it := range br.Items {
		items = append(items, map[string]any{
			"tool_id":        it.ToolID,
			"owner_id":       it.OwnerID,
			"quantity":       it.Quantity,
			"subtotal_cents": it.SubtotalCents,
			"deposit_cents":  it.DepositCents,
			"is_optional":    it.IsOptional,
		})
	}
	decisions := make([]any, 0, len(br.Decisions))
	for _, d := range br.Decisions {
		m := map[string]any{
			"owner_id": d.OwnerID,
			"decision": string(d.Decision),
		}
		if d.Reason != "" {
			m["reason"] = d.Reason
		}
		if d.DecidedAt != nil {
			m["decided_at"] = d.DecidedAt.UTC().Format(time.RFC3339)
		}
		decisions = append(decisions, m)
	}
	toolRentals := make([]any, 0, len(br.ToolRentalIDs))
	for _, id := range br.ToolRentalIDs {
		toolRentals = append(toolRentals, id)
	}

	m := map[string]any{
		"id":                 br.ID,
		"bundle_id":          br.BundleID,
		"renter_id":          br.RenterID,
		"start_date":         formatDate(br.StartDate),
		"end_date":           formatDate(br.EndDate),
		"total_cost_cents":   br.TotalCostCents,
		"discount_cents":     br.DiscountCents,
		"deposit_cents":      br.DepositCents,
		"platform_fee_cents": br.PlatformFeeCents,
		"final_cost_cents":   br.FinalCostCents,
		"status":             string(br.Status),
		"renter_notes":       br.RenterNotes,
		"owner_notes":        br.OwnerNotes,
		"items":              items,
		"decisions":          decisions,
		"tool_rental_ids":    toolRentals,
		"created_on":         br.CreatedOn.UTC().Format(time.RFC3339),
		"updated_on":         br.UpdatedOn.UTC().Format(time.RFC3339),
	}
	if br.CancelReason != "" {
		m["cancel_reason"] = br.CancelReason
	}
	return m
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}
