package domain

import (
	"fmt"
	"time"
)

type BundleRentalStatus string

const (
	BundleRentalStatusPending   BundleRentalStatus = "PENDING"
	BundleRentalStatusApproved  BundleRentalStatus = "APPROVED"
	BundleRentalStatusActive    BundleRentalStatus = "ACTIVE"
	BundleRentalStatusCompleted BundleRentalStatus = "COMPLETED"
	BundleRentalStatusRejected  BundleRentalStatus = "REJECTED"
	BundleRentalStatusCancelled BundleRentalStatus = "CANCELLED"
)

type Decision string

const (
	DecisionPending  Decision = "PENDING"
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

const ApprovalTimeoutReason = "approval timeout"

type ApprovalDecision struct {
	ID             int32      `json:"id"`
	BundleRentalID int32      `json:"bundle_rental_id"`
	OwnerID        int32      `json:"owner_id"`
	Decision       Decision   `json:"decision"`
	Reason         string     `json:"reason,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
}

// BundleRentalItem is one priced line of a bundle rental.
type BundleRentalItem struct {
	ToolID        int32 `json:"tool_id"`
	OwnerID       int32 `json:"owner_id"`
	Quantity      int32 `json:"quantity"`
	SubtotalCents int64 `json:"subtotal_cents"`
	DepositCents  int64 `json:"deposit_cents"`
	IsOptional    bool  `json:"is_optional"`
}

type BundleRental struct {
	ID               int32              `json:"id"`
	BundleID         int32              `json:"bundle_id"`
	RenterID         int32              `json:"renter_id"`
	StartDate        time.Time          `json:"start_date"`
	EndDate          time.Time          `json:"end_date"`
	TotalCostCents   int64              `json:"total_cost_cents"`
	DiscountCents    int64              `json:"discount_cents"`
	DepositCents     int64              `json:"deposit_cents"`
	PlatformFeeCents int64              `json:"platform_fee_cents"`
	FinalCostCents   int64              `json:"final_cost_cents"`
	Status           BundleRentalStatus `json:"status"`
	RenterNotes      string             `json:"renter_notes"`
	OwnerNotes       string             `json:"owner_notes"`
	CancelReason     string             `json:"cancel_reason,omitempty"`
	Version          int32              `json:"version"`
	Items            []BundleRentalItem `json:"items"`
	Decisions        []ApprovalDecision `json:"decisions"`
	ToolRentalIDs    []int32            `json:"tool_rental_ids,omitempty"`
	CreatedOn        time.Time          `json:"created_on"`
	UpdatedOn        time.Time          `json:"updated_on"`
}

func (r *BundleRental) Range() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// DecisionFor returns the decision slot of ownerID, or nil when the owner has none.
func (r *BundleRental) DecisionFor(ownerID int32) *ApprovalDecision {
	for i := range r.Decisions {
		if r.Decisions[i].OwnerID == ownerID {
			return &r.Decisions[i]
		}
	}
	return nil
}

// OwnerIDs lists the owners holding a decision slot.
func (r *BundleRental) OwnerIDs() []int32 {
	ids := make([]int32, 0, len(r.Decisions))
	for _, d := range r.Decisions {
		ids = append(ids, d.OwnerID)
	}
	return ids
}

// IsParticipant reports whether userID is the renter or one of the owners.
func (r *BundleRental) IsParticipant(userID int32) bool {
	return r.RenterID == userID || r.DecisionFor(userID) != nil
}

// ResolveDecisions applies the approval rule: any rejection rejects, unanimous approval approves.
func ResolveDecisions(decisions []ApprovalDecision) BundleRentalStatus {
	if len(decisions) == 0 {
		return BundleRentalStatusPending
	}
	approved := 0
	for _, d := range decisions {
		switch d.Decision {
		case DecisionRejected:
			return BundleRentalStatusRejected
		case DecisionApproved:
			approved++
		}
	}
	if approved == len(decisions) {
		return BundleRentalStatusApproved
	}
	return BundleRentalStatusPending
}

// DistinctOwners returns the owners of the rented items, first occurrence first.
func DistinctOwners(items []BundleRentalItem) []int32 {
	seen := make(map[int32]struct{}, len(items))
	owners := make([]int32, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.OwnerID]; ok {
			continue
		}
		seen[item.OwnerID] = struct{}{}
		owners = append(owners, item.OwnerID)
	}
	return owners
}

var bundleRentalTransitions = map[BundleRentalStatus]map[BundleRentalStatus]struct{}{
	BundleRentalStatusPending: {
		BundleRentalStatusApproved:  {},
		BundleRentalStatusRejected:  {},
		BundleRentalStatusCancelled: {},
	},
	BundleRentalStatusApproved: {
		BundleRentalStatusActive:    {},
		BundleRentalStatusCancelled: {},
	},
	BundleRentalStatusActive: {
		BundleRentalStatusCompleted: {},
		BundleRentalStatusCancelled: {},
	},
	BundleRentalStatusCompleted: {},
	BundleRentalStatusRejected:  {},
	BundleRentalStatusCancelled: {},
}

// CanTransition reports whether from -> to is allowed. Staying in the same state is not.
func CanTransition(from, to BundleRentalStatus) bool {
	next, ok := bundleRentalTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s BundleRentalStatus) IsTerminal() bool {
	next, ok := bundleRentalTransitions[s]
	return ok && len(next) == 0
}

// TransitionTo moves the rental to the given status or fails with ErrInvalidStateTransition.
func (r *BundleRental) TransitionTo(to BundleRentalStatus, now time.Time) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, r.Status, to)
	}
	r.Status = to
	r.UpdatedOn = now
	return nil
}
