package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/push"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository"
)

type eventTemplate struct {
	title   string
	message string // formatted with the rental id and the start date
}

var eventTemplates = map[domain.BundleRentalEvent]eventTemplate{
	domain.EventSubmitted:        {"New Bundle Rental Request", "Bundle rental #%d starting %s needs your approval."},
	domain.EventDecisionRecorded: {"Bundle Rental Update", "An owner responded to bundle rental #%d starting %s."},
	domain.EventApproved:         {"Bundle Rental Approved", "Bundle rental #%d starting %s was approved by every owner."},
	domain.EventRejected:         {"Bundle Rental Rejected", "Bundle rental #%d starting %s was rejected."},
	domain.EventExpired:          {"Bundle Rental Expired", "Bundle rental #%d starting %s expired before every owner responded."},
	domain.EventCancelled:        {"Bundle Rental Cancelled", "Bundle rental #%d starting %s was cancelled."},
	domain.EventPickedUp:         {"Bundle Picked Up", "The tools of bundle rental #%d starting %s were picked up."},
	domain.EventCompleted:        {"Bundle Returned", "Bundle rental #%d starting %s is complete."},
}

type notificationDispatcher struct {
	userRepo repository.UserRepository
	noteRepo repository.NotificationRepository
	emailSvc EmailService
	pushSvc  push.Sender
}

// NewNotificationDispatcher sends each event as an in-app notification, an email and a push message.
func NewNotificationDispatcher(userRepo repository.UserRepository, noteRepo repository.NotificationRepository, emailSvc EmailService, pushSvc push.Sender) Notifier {
	return &notificationDispatcher{
		userRepo: userRepo,
		noteRepo: noteRepo,
		emailSvc: emailSvc,
		pushSvc:  pushSvc,
	}
}

func (d *notificationDispatcher) Notify(ctx context.Context, event domain.BundleRentalEvent, br *domain.BundleRental, recipients []int32, detail string) {
	tmpl, ok := eventTemplates[event]
	if !ok {
		logger.Warn("No template for bundle rental event", "event", event)
		return
	}

	message := fmt.Sprintf(tmpl.message, br.ID, br.StartDate.Format("2006-01-02"))
	if detail != "" {
		message += " Reason: " + detail
	}
	attrs := map[string]string{
		"type":             "BUNDLE_RENTAL_" + string(event),
		"bundle_rental_id": strconv.Itoa(int(br.ID)),
		"status":           string(br.Status),
	}

	seen := make(map[int32]struct{}, len(recipients))
	for _, userID := range recipients {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		d.deliver(ctx, userID, tmpl.title, message, attrs)
	}
}

func (d *notificationDispatcher) deliver(ctx context.Context, userID int32, title, message string, attrs map[string]string) {
	log := logger.Get().With("userID", userID, "bundleRentalID", attrs["bundle_rental_id"], "type", attrs["type"])

	notif := &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	}
	if err := d.noteRepo.Create(ctx, notif); err != nil {
		log.Error("Failed to store notification", "error", err)
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Error("Failed to load notification recipient", "error", err)
		return
	}

	if d.emailSvc != nil && user.Email != "" {
		if err := d.emailSvc.SendEmail(ctx, user.Email, user.Name, title, message); err != nil {
			log.Error("Failed to send notification email", "error", err)
		}
	}
	if d.pushSvc != nil && user.PushToken != "" {
		if err := d.pushSvc.Send(ctx, user.PushToken, title, message, attrs); err != nil {
			log.Error("Failed to send push notification", "error", err)
		}
	}
}
