package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/service"
	"github.com/nickprotop/NeighborTools-sub003/internal/utils"
)

// BundleHandler serves the public bundle availability and quote endpoints.
type BundleHandler struct {
	availability service.BundleAvailabilityService
	pricing      service.PricingEngine
}

func NewBundleHandler(availability service.BundleAvailabilityService, pricing service.PricingEngine) *BundleHandler {
	return &BundleHandler{
		availability: availability,
		pricing:      pricing,
	}
}

// Availability handles GET /api/v1/bundles/{id}/availability?start=&end=
func (h *BundleHandler) Availability(w http.ResponseWriter, r *http.Request) {
	bundleID, dates, err := bundleQuery(r)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	res, err := h.availability.CheckBundleAvailability(r.Context(), bundleID, dates)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Quote handles GET /api/v1/bundles/{id}/quote?start=&end=&optional=1,2
func (h *BundleHandler) Quote(w http.ResponseWriter, r *http.Request) {
	bundleID, dates, err := bundleQuery(r)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	optional, err := parseIDList(r.URL.Query().Get("optional"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	cost, err := h.pricing.CalculateBundleCost(r.Context(), bundleID, dates, optional)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, cost)
}

func bundleQuery(r *http.Request) (int32, domain.DateRange, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, domain.DateRange{}, domain.NewValidationError("invalid bundle id")
	}

	q := r.URL.Query()
	start, err := parseDate("start", q.Get("start"))
	if err != nil {
		return 0, domain.DateRange{}, err
	}
	end, err := parseDate("end", q.Get("end"))
	if err != nil {
		return 0, domain.DateRange{}, err
	}
	return int32(id), domain.DateRange{Start: start, End: end}, nil
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

func parseIDList(s string) ([]int32, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int32, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, domain.NewValidationError("invalid tool id %q", p)
		}
		ids = append(ids, int32(id))
	}
	return ids, nil
}
