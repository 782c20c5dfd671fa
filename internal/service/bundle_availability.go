package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

// SuggestionSettings bounds the alternative window search.
type SuggestionSettings struct {
	HorizonDays    int
	MaxSuggestions int
	// Concurrency caps how many tool schedules are loaded at once.
	Concurrency int
}

type bundleAvailabilityService struct {
	bundleRepo   repository.BundleRepository
	availability AvailabilityService
	settings     SuggestionSettings
}

func NewBundleAvailabilityService(bundleRepo repository.BundleRepository, availability AvailabilityService, settings SuggestionSettings) BundleAvailabilityService {
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	return &bundleAvailabilityService{
		bundleRepo:   bundleRepo,
		availability: availability,
		settings:     settings,
	}
}

func (s *bundleAvailabilityService) CheckBundleAvailability(ctx context.Context, bundleID int32, r domain.DateRange) (*domain.BundleAvailabilityResult, error) {
	logger.EnterMethod("bundleAvailabilityService.CheckBundleAvailability", "bundleID", bundleID, "start", r.Start, "end", r.End)

	if err := r.Validate(); err != nil {
		logger.ExitMethodWithError("bundleAvailabilityService.CheckBundleAvailability", err, "bundleID", bundleID)
		return nil, err
	}

	bundle, err := s.bundleRepo.GetByID(ctx, bundleID)
	if err != nil {
		logger.ExitMethodWithError("bundleAvailabilityService.CheckBundleAvailability", err, "bundleID", bundleID)
		return nil, err
	}

	reqs := bundle.ToolRequirements()
	if !hasRequired(reqs) {
		err := domain.NewValidationError("bundle %d has no required items", bundleID)
		logger.ExitMethodWithError("bundleAvailabilityService.CheckBundleAvailability", err, "bundleID", bundleID)
		return nil, err
	}

	schedules, err := s.loadSchedules(ctx, bundle)
	if err != nil {
		logger.ExitMethodWithError("bundleAvailabilityService.CheckBundleAvailability", err, "bundleID", bundleID)
		return nil, err
	}

	res := &domain.BundleAvailabilityResult{
		BundleID:    bundleID,
		Requested:   r,
		Tools:       make([]domain.AvailabilityResult, 0, len(schedules)),
		Suggestions: []domain.DateRange{},
	}
	for _, sch := range schedules {
		tr := s.availability.Evaluate(sch, r)
		tr.Required = reqs[sch.Tool.ID]
		res.Tools = append(res.Tools, tr)
	}
	res.Status = domain.ClassifyBundle(res.Tools)

	if res.Status != domain.BundleFullyAvailable {
		res.Suggestions = s.suggest(schedules, reqs, r, res.Status == domain.BundlePartiallyAvailable)
	}

	logger.ExitMethod("bundleAvailabilityService.CheckBundleAvailability", "bundleID", bundleID, "status", res.Status, "suggestions", len(res.Suggestions))
	return res, nil
}

func hasRequired(reqs map[int32]bool) bool {
	for _, required := range reqs {
		if required {
			return true
		}
	}
	return false
}

// loadSchedules fetches every distinct tool's schedule with bounded concurrency,
// keeping the bundle's display order.
func (s *bundleAvailabilityService) loadSchedules(ctx context.Context, bundle *domain.Bundle) ([]*domain.ToolSchedule, error) {
	ids := bundle.DistinctToolIDs()
	schedules := make([]*domain.ToolSchedule, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(ids), s.settings.Concurrency))
	for i, id := range ids {
		g.Go(func() error {
			sch, err := s.availability.LoadSchedule(gctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.ToolError{ToolID: id, Err: domain.NewValidationError("tool referenced by bundle %d does not exist", bundle.ID)}
			}
			if err != nil {
				return &domain.ToolError{ToolID: id, Err: err}
			}
			schedules[i] = sch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return schedules, nil
}

// suggest scans outward from the requested start one day at a time, earlier before later,
// for windows of the same length. needAll also requires the optional tools to be free.
func (s *bundleAvailabilityService) suggest(schedules []*domain.ToolSchedule, reqs map[int32]bool, requested domain.DateRange, needAll bool) []domain.DateRange {
	suggestions := []domain.DateRange{}
	if s.settings.MaxSuggestions <= 0 {
		return suggestions
	}

	for k := 1; k <= s.settings.HorizonDays; k++ {
		for _, offset := range []int{-k, k} {
			window := requested.Shift(offset)
			if !s.windowFree(schedules, reqs, window, needAll) {
				continue
			}
			suggestions = append(suggestions, window)
			if len(suggestions) == s.settings.MaxSuggestions {
				return suggestions
			}
		}
	}
	return suggestions
}

func (s *bundleAvailabilityService) windowFree(schedules []*domain.ToolSchedule, reqs map[int32]bool, window domain.DateRange, needAll bool) bool {
	for _, sch := range schedules {
		if !needAll && !reqs[sch.Tool.ID] {
			continue
		}
		if !s.availability.Evaluate(sch, window).Available {
			return false
		}
	}
	return true
}
