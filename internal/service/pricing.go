package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
	"github.com/nickprotop/NeighborTools-sub003/internal/utils"
)

var hundred = decimal.NewFromInt(100)

type pricingEngine struct {
	bundleRepo     repository.BundleRepository
	toolRepo       repository.ToolRepository
	thresholds     utils.TierThresholds
	platformFeePct decimal.Decimal
}

func NewPricingEngine(bundleRepo repository.BundleRepository, toolRepo repository.ToolRepository, thresholds utils.TierThresholds, platformFeePct decimal.Decimal) PricingEngine {
	return &pricingEngine{
		bundleRepo:     bundleRepo,
		toolRepo:       toolRepo,
		thresholds:     thresholds,
		platformFeePct: platformFeePct,
	}
}

func (s *pricingEngine) CalculateBundleCost(ctx context.Context, bundleID int32, r domain.DateRange, optionalToolIDs []int32) (*domain.CostBreakdown, error) {
	logger.EnterMethod("pricingEngine.CalculateBundleCost", "bundleID", bundleID, "start", r.Start, "end", r.End, "optional", optionalToolIDs)

	cost, err := s.calculate(ctx, bundleID, r, optionalToolIDs)
	if err != nil {
		logger.ExitMethodWithError("pricingEngine.CalculateBundleCost", err, "bundleID", bundleID)
		return nil, err
	}

	logger.ExitMethod("pricingEngine.CalculateBundleCost", "bundleID", bundleID, "days", cost.Days, "finalTotalCents", cost.FinalTotalCents)
	return cost, nil
}

func (s *pricingEngine) calculate(ctx context.Context, bundleID int32, r domain.DateRange, optionalToolIDs []int32) (*domain.CostBreakdown, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	bundle, err := s.bundleRepo.GetByID(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	items, err := bundle.SelectItems(optionalToolIDs)
	if err != nil {
		return nil, err
	}

	tools, err := s.toolRepo.ListByIDs(ctx, bundle.DistinctToolIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[int32]*domain.Tool, len(tools))
	for _, t := range tools {
		byID[t.ID] = t
	}
	for _, id := range bundle.DistinctToolIDs() {
		t, ok := byID[id]
		if !ok {
			return nil, &domain.ToolError{ToolID: id, Err: domain.NewValidationError("tool referenced by bundle %d does not exist", bundle.ID)}
		}
		if t.IsDeleted() {
			return nil, &domain.ToolError{ToolID: id, Err: domain.NewValidationError("tool referenced by bundle %d has been deleted", bundle.ID)}
		}
	}

	return PriceItems(bundle, items, byID, r, s.thresholds, s.platformFeePct), nil
}

// PriceItems computes the breakdown for the selected items of a bundle. Every item's
// tool must be present in tools.
func PriceItems(bundle *domain.Bundle, items []domain.BundleItem, tools map[int32]*domain.Tool, r domain.DateRange, th utils.TierThresholds, platformFeePct decimal.Decimal) *domain.CostBreakdown {
	days := r.Days()
	cost := &domain.CostBreakdown{
		BundleID:              bundle.ID,
		Range:                 r,
		Days:                  days,
		Lines:                 make([]domain.CostLine, 0, len(items)),
		DiscountPercentage:    bundle.DiscountPercentage,
		PlatformFeePercentage: platformFeePct,
	}

	for _, item := range items {
		tool := tools[item.ToolID]
		tc := utils.CalculateToolCost(days, tool, th)
		qty := int64(item.QuantityNeeded)
		line := domain.CostLine{
			ToolID:        tool.ID,
			ToolName:      tool.Name,
			OwnerID:       tool.OwnerID,
			Tier:          tc.Tier,
			UnitRateCents: tc.UnitRateCents,
			Periods:       tc.Periods,
			Quantity:      item.QuantityNeeded,
			Days:          days,
			SubtotalCents: tc.CostCents * qty,
			DepositCents:  int64(tool.DepositCents) * qty,
			IsOptional:    item.IsOptional,
		}
		cost.Lines = append(cost.Lines, line)
		cost.SubtotalCents += line.SubtotalCents
		cost.DepositTotalCents += line.DepositCents
	}

	cost.DiscountCents = percentOf(cost.SubtotalCents, bundle.DiscountPercentage)
	if cost.DiscountCents > cost.SubtotalCents {
		cost.DiscountCents = cost.SubtotalCents
	}
	if cost.DiscountCents < 0 {
		cost.DiscountCents = 0
	}
	cost.PlatformFeeCents = max(percentOf(cost.SubtotalCents, platformFeePct), 0)
	cost.FinalTotalCents = cost.SubtotalCents - cost.DiscountCents + cost.DepositTotalCents + cost.PlatformFeeCents
	return cost
}

// percentOf returns pct percent of cents, rounded half away from zero to a whole cent.
func percentOf(cents int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(pct).Div(hundred).Round(0).IntPart()
}
