package domain

import "time"

// RentalStatus is the lifecycle status of a single tool rental.
type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusApproved  RentalStatus = "APPROVED"
	RentalStatusRejected  RentalStatus = "REJECTED"
	RentalStatusScheduled RentalStatus = "SCHEDULED"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
	RentalStatusOverdue   RentalStatus = "OVERDUE"
)

// BlockingRentalStatuses are the statuses that hold a tool.
var BlockingRentalStatuses = []RentalStatus{
	RentalStatusPending,
	RentalStatusApproved,
	RentalStatusScheduled,
	RentalStatusActive,
	RentalStatusOverdue,
}

// Rental is an individual tool rental. Bundle rentals issue one per priced tool once approved.
type Rental struct {
	ID             int32        `json:"id"`
	ToolID         int32        `json:"tool_id"`
	RenterID       int32        `json:"renter_id"`
	OwnerID        int32        `json:"owner_id"`
	BundleRentalID *int32       `json:"bundle_rental_id,omitempty"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
	Quantity       int32        `json:"quantity"`
	TotalCostCents int64        `json:"total_cost_cents"`
	DepositCents   int64        `json:"deposit_cents"`
	Status         RentalStatus `json:"status"`
	Notes          string       `json:"notes"`
	CreatedOn      time.Time    `json:"created_on"`
}
