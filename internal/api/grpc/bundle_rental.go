package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/service"
)

type BundleRentalHandler struct {
	availabilitySvc service.BundleAvailabilityService
	pricingSvc      service.PricingEngine
	rentalSvc       service.BundleRentalService
	approvalSvc     service.ApprovalService
}

func NewBundleRentalHandler(
	availabilitySvc service.BundleAvailabilityService,
	pricingSvc service.PricingEngine,
	rentalSvc service.BundleRentalService,
	approvalSvc service.ApprovalService,
) *BundleRentalHandler {
	return &BundleRentalHandler{
		availabilitySvc: availabilitySvc,
		pricingSvc:      pricingSvc,
		rentalSvc:       rentalSvc,
		approvalSvc:     approvalSvc,
	}
}

var _ BundleRentalServiceServer = (*BundleRentalHandler)(nil)

func (h *BundleRentalHandler) CheckBundleAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	bundleID, err := int32Field(req, "bundle_id")
	if err != nil {
		return nil, err
	}
	r, err := dateRangeFields(req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	res, err := h.availabilitySvc.CheckBundleAvailability(ctx, bundleID, r)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return toStruct(MapBundleAvailability(res))
}

func (h *BundleRentalHandler) QuoteBundle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	bundleID, err := int32Field(req, "bundle_id")
	if err != nil {
		return nil, err
	}
	r, err := dateRangeFields(req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	optional, err := int32ListField(req, "optional_tool_ids")
	if err != nil {
		return nil, err
	}

	cost, err := h.pricingSvc.CalculateBundleCost(ctx, bundleID, r, optional)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return toStruct(MapCostBreakdown(cost))
}

func (h *BundleRentalHandler) RequestBundleRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	bundleID, err := int32Field(req, "bundle_id")
	if err != nil {
		return nil, err
	}
	r, err := dateRangeFields(req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	optional, err := int32ListField(req, "optional_tool_ids")
	if err != nil {
		return nil, err
	}

	br, err := h.rentalSvc.RequestBundleRental(ctx, userID, bundleID, r, optional, stringField(req, "notes"))
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return toStruct(map[string]any{"bundle_rental": MapBundleRental(br)})
}

func (h *BundleRentalHandler) SubmitDecision(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := int32Field(req, "bundle_rental_id")
	if err != nil {
		return nil, err
	}
	decision := domain.Decision(stringField(req, "decision"))

	st, err := h.approvalSvc.SubmitDecision(ctx, id, userID, decision, stringField(req, "reason"))
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return toStruct(map[string]any{
		"bundle_rental_id": id,
		"status":           string(st),
	})
}

func (h *BundleRentalHandler) ConfirmPickup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.lifecycle(ctx, req, func(userID, id int32) (*domain.BundleRental, error) {
		return h.rentalSvc.ConfirmPickup(ctx, id, userID)
	})
}

func (h *BundleRentalHandler) ConfirmReturn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.lifecycle(ctx, req, func(userID, id int32) (*domain.BundleRental, error) {
		return h.rentalSvc.ConfirmReturn(ctx, id, userID)
	})
}

func (h *BundleRentalHandler) CancelBundleRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.lifecycle(ctx, req, func(userID, id int32) (*domain.BundleRental, error) {
		return h.rentalSvc.CancelBundleRental(ctx, id, userID, stringField(req, "reason"))
	})
}

func (h *BundleRentalHandler) GetBundleRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.lifecycle(ctx, req, func(userID, id int32) (*domain.BundleRental, error) {
		return h.rentalSvc.GetBundleRental(ctx, userID, id)
	})
}

// lifecycle handles the calls that act on one rental as the caller.
func (h *BundleRentalHandler) lifecycle(ctx context.Context, req *structpb.Struct, call func(userID, id int32) (*domain.BundleRental, error)) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := int32Field(req, "bundle_rental_id")
	if err != nil {
		return nil, err
	}

	br, err := call(userID, id)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return toStruct(map[string]any{"bundle_rental": MapBundleRental(br)})
}

func (h *BundleRentalHandler) ListMyBundleRentals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	page, err := optionalInt32Field(req, "page")
	if err != nil {
		return nil, err
	}
	pageSize, err := optionalInt32Field(req, "page_size")
	if err != nil {
		return nil, err
	}

	rentals, count, err := h.rentalSvc.ListMyBundleRentals(ctx, userID, stringField(req, "status"), page, pageSize)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	out := make([]any, 0, len(rentals))
	for i := range rentals {
		out = append(out, MapBundleRental(&rentals[i]))
	}
	return toStruct(map[string]any{
		"bundle_rentals": out,
		"total_count":    count,
	})
}
