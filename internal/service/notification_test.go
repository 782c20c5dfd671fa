package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/service"
)

func TestNotificationDispatcher_Notify(t *testing.T) {
	ctx := context.Background()
	br := pendingRental(55, date("2025-03-01"))

	t.Run("Stores, emails and pushes each recipient once", func(t *testing.T) {
		users := new(MockUserRepo)
		notes := new(MockNotificationRepo)
		email := new(MockEmailService)
		pusher := new(MockPushSender)
		d := service.NewNotificationDispatcher(users, notes, email, pusher)

		notes.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Title == "Bundle Rental Rejected" &&
				n.Message == "Bundle rental #55 starting 2025-03-10 was rejected. Reason: busy" &&
				n.Attributes["type"] == "BUNDLE_RENTAL_REJECTED" &&
				n.Attributes["bundle_rental_id"] == "55"
		})).Return(nil).Twice()
		users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "renter@example.com", Name: "Rita", PushToken: "tok-1"}, nil).Once()
		users.On("GetByID", ctx, int32(20)).Return(&domain.User{ID: 20, Email: "owner@example.com", Name: "Omar"}, nil).Once()
		email.On("SendEmail", ctx, "renter@example.com", "Rita", "Bundle Rental Rejected", mock.Anything).Return(nil).Once()
		email.On("SendEmail", ctx, "owner@example.com", "Omar", "Bundle Rental Rejected", mock.Anything).Return(nil).Once()
		pusher.On("Send", ctx, "tok-1", "Bundle Rental Rejected", mock.Anything, mock.Anything).Return(nil).Once()

		d.Notify(ctx, domain.EventRejected, &br, []int32{1, 20, 1}, "busy")

		notes.AssertExpectations(t)
		users.AssertExpectations(t)
		email.AssertExpectations(t)
		pusher.AssertExpectations(t)
	})

	t.Run("Failures do not stop delivery", func(t *testing.T) {
		users := new(MockUserRepo)
		notes := new(MockNotificationRepo)
		email := new(MockEmailService)
		pusher := new(MockPushSender)
		d := service.NewNotificationDispatcher(users, notes, email, pusher)

		notes.On("Create", ctx, mock.Anything).Return(errors.New("db down"))
		users.On("GetByID", ctx, int32(20)).Return(nil, domain.NewNotFoundError("user", 20))
		users.On("GetByID", ctx, int32(21)).Return(&domain.User{ID: 21, Email: "b@example.com", Name: "Bo", PushToken: "tok-21"}, nil)
		email.On("SendEmail", ctx, "b@example.com", "Bo", mock.Anything, mock.Anything).Return(errors.New("sendgrid down"))
		pusher.On("Send", ctx, "tok-21", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		d.Notify(ctx, domain.EventApproved, &br, []int32{20, 21}, "")

		notes.AssertNumberOfCalls(t, "Create", 2)
		pusher.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Unknown event", func(t *testing.T) {
		notes := new(MockNotificationRepo)
		d := service.NewNotificationDispatcher(new(MockUserRepo), notes, nil, nil)

		d.Notify(ctx, domain.BundleRentalEvent("LOST"), &br, []int32{1}, "")

		notes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Without email or push", func(t *testing.T) {
		users := new(MockUserRepo)
		notes := new(MockNotificationRepo)
		d := service.NewNotificationDispatcher(users, notes, nil, nil)

		notes.On("Create", ctx, mock.Anything).Return(nil)
		users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "renter@example.com", PushToken: "tok"}, nil)

		assert.NotPanics(t, func() {
			d.Notify(ctx, domain.EventSubmitted, &br, []int32{1}, "")
		})
	})
}
