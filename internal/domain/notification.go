package domain

import "time"

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  time.Time         `json:"created_on"`
}

// BundleRentalEvent names a state change that participants are told about.
type BundleRentalEvent string

const (
	EventSubmitted        BundleRentalEvent = "SUBMITTED"
	EventDecisionRecorded BundleRentalEvent = "DECISION_RECORDED"
	EventApproved         BundleRentalEvent = "APPROVED"
	EventRejected         BundleRentalEvent = "REJECTED"
	EventExpired          BundleRentalEvent = "EXPIRED"
	EventCancelled        BundleRentalEvent = "CANCELLED"
	EventPickedUp         BundleRentalEvent = "PICKED_UP"
	EventCompleted        BundleRentalEvent = "COMPLETED"
)

// PaymentCaptureRequest asks the payment flow to capture the final cost of an approved rental.
type PaymentCaptureRequest struct {
	ID             int32     `json:"id"`
	BundleRentalID int32     `json:"bundle_rental_id"`
	AmountCents    int64     `json:"amount_cents"`
	IdempotencyKey string    `json:"idempotency_key"`
	Status         string    `json:"status"`
	CreatedOn      time.Time `json:"created_on"`
}
