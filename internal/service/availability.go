package service

import (
	"context"
	"time"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

type availabilityService struct {
	toolRepo            repository.ToolRepository
	defaultLeadTimeDays int
	clock               Clock
}

func NewAvailabilityService(toolRepo repository.ToolRepository, defaultLeadTimeDays int, clock Clock) AvailabilityService {
	return &availabilityService{
		toolRepo:            toolRepo,
		defaultLeadTimeDays: defaultLeadTimeDays,
		clock:               clock,
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, toolID int32, r domain.DateRange) (*domain.AvailabilityResult, error) {
	logger.EnterMethod("availabilityService.CheckAvailability", "toolID", toolID, "start", r.Start, "end", r.End)

	if err := r.Validate(); err != nil {
		logger.ExitMethodWithError("availabilityService.CheckAvailability", err, "toolID", toolID)
		return nil, err
	}

	schedule, err := s.LoadSchedule(ctx, toolID)
	if err != nil {
		logger.ExitMethodWithError("availabilityService.CheckAvailability", err, "toolID", toolID)
		return nil, err
	}

	res := s.Evaluate(schedule, r)
	logger.ExitMethod("availabilityService.CheckAvailability", "toolID", toolID, "available", res.Available, "reason", res.Reason)
	return &res, nil
}

func (s *availabilityService) LoadSchedule(ctx context.Context, toolID int32) (*domain.ToolSchedule, error) {
	tool, err := s.toolRepo.GetByID(ctx, toolID)
	if err != nil {
		return nil, err
	}
	intervals, err := s.toolRepo.ListActiveRentalIntervals(ctx, toolID)
	if err != nil {
		return nil, err
	}
	blackouts, err := s.toolRepo.ListBlackouts(ctx, toolID)
	if err != nil {
		return nil, err
	}
	return &domain.ToolSchedule{Tool: tool, Intervals: intervals, Blackouts: blackouts}, nil
}

// Evaluate reports every overlapping interval, then picks the most fundamental reason
// the tool cannot be rented: state of the tool first, then conflicts, then lead time.
func (s *availabilityService) Evaluate(schedule *domain.ToolSchedule, r domain.DateRange) domain.AvailabilityResult {
	tool := schedule.Tool
	res := domain.AvailabilityResult{ToolID: tool.ID, Reason: domain.ReasonAvailable}

	var rentalConflict, blackoutConflict bool
	for _, iv := range schedule.Intervals {
		if iv.Range().Overlaps(r) {
			res.Conflicts = append(res.Conflicts, iv)
			rentalConflict = true
		}
	}
	for _, b := range schedule.Blackouts {
		iv := b.Interval()
		if iv.Range().Overlaps(r) {
			res.Conflicts = append(res.Conflicts, iv)
			blackoutConflict = true
		}
	}

	earliest := s.earliestStart(tool)
	tooSoon := r.Start.Before(earliest)

	switch {
	case !tool.IsActive || tool.IsDeleted():
		res.Reason = domain.ReasonToolInactive
	case !tool.IsAvailableForRent:
		res.Reason = domain.ReasonNotRentable
	case rentalConflict:
		res.Reason = domain.ReasonRentalConflict
	case blackoutConflict:
		res.Reason = domain.ReasonBlackout
	case tooSoon:
		res.Reason = domain.ReasonLeadTime
	default:
		res.Available = true
	}
	if tooSoon {
		res.EarliestStart = &earliest
	}
	return res
}

func (s *availabilityService) earliestStart(tool *domain.Tool) time.Time {
	lead := int(tool.LeadTimeDays)
	if lead <= 0 {
		lead = s.defaultLeadTimeDays
	}
	today := s.clock.now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, lead)
}
