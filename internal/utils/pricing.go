package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
)

// TierThresholds decides when longer rate periods kick in.
type TierThresholds struct {
	WeeklyDays      int
	MonthlyDays     int
	MonthLengthDays int
}

// DefaultTierThresholds uses weekly pricing from 7 days and monthly pricing from 30 days.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{WeeklyDays: 7, MonthlyDays: 30, MonthLengthDays: 30}
}

// ToolCost is the cost of renting one unit of a tool.
type ToolCost struct {
	Tier          domain.RateTier
	UnitRateCents int64
	Periods       int64
	CostCents     int64
}

// ParseDate converts a yyyy-mm-dd formatted string into a UTC midnight time
func ParseDate(dateStr string) (time.Time, error) {
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year: %v", err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month: %v", err)
	}

	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day: %v", err)
	}

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}

	if day < 1 || day > DaysInMonth(year, month) {
		return time.Time{}, fmt.Errorf("day must be between 1 and %d", DaysInMonth(year, month))
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	if month == 2 {
		// Check for leap year
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	return 31
}

// ceilDiv divides rounding partial periods up
func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return a
	}
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

// CalculateToolCost prices one unit of a tool for the given number of days.
//
// Month-unit tools always bill whole months and week-unit tools bill at least whole weeks.
// Day-unit tools move to weekly pricing at th.WeeklyDays and monthly pricing at th.MonthlyDays,
// provided the tool defines that rate. Partial periods are rounded up.
func CalculateToolCost(days int, tool *domain.Tool, th TierThresholds) ToolCost {
	if days < 1 {
		days = 1
	}
	d := int64(days)
	monthLen := int64(th.MonthLengthDays)
	if monthLen <= 0 {
		monthLen = 30
	}

	monthly := tool.PricePerMonthCents > 0
	weekly := tool.PricePerWeekCents > 0

	switch {
	case monthly && (tool.DurationUnit == domain.ToolDurationUnitMonth || days >= th.MonthlyDays):
		return periodCost(domain.RateTierMonthly, int64(tool.PricePerMonthCents), ceilDiv(d, monthLen))
	case weekly && (tool.DurationUnit == domain.ToolDurationUnitWeek || tool.DurationUnit == domain.ToolDurationUnitMonth || days >= th.WeeklyDays):
		return periodCost(domain.RateTierWeekly, int64(tool.PricePerWeekCents), ceilDiv(d, 7))
	default:
		return periodCost(domain.RateTierDaily, int64(tool.PricePerDayCents), d)
	}
}

func periodCost(tier domain.RateTier, rate, periods int64) ToolCost {
	return ToolCost{
		Tier:          tier,
		UnitRateCents: rate,
		Periods:       periods,
		CostCents:     rate * periods,
	}
}
