// File: internal/notification/service.go
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/booking"
	"motormate_backend/internal/common"
)

// Service creates and reads notifications. It implements booking.Notifier;
// every write in here is best effort, a notification that fails to persist
// is logged and dropped.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

var _ booking.Notifier = (*Service)(nil)

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.Named("notification_service"),
	}
}

// BookingsCreated notifies the garage owner about a new checkout and the
// customer that their request went in.
func (s *Service) BookingsCreated(ctx context.Context, bookings []booking.Booking) {
	if len(bookings) == 0 {
		return
	}
	first := bookings[0]

	if ownerID := first.Garage.OwnerID; ownerID != uuid.Nil {
		s.create(ctx, &Notification{
			ProfileID:        ownerID,
			Type:             BookingRequested,
			Message:          fmt.Sprintf("New booking request: %d service(s) on %s.", len(bookings), first.ScheduledAt.Format("Jan 2, 2006 at 15:04")),
			RelatedBookingID: &first.ID,
		})
	}

	s.create(ctx, &Notification{
		ProfileID:        first.CustomerID,
		Type:             BookingRequested,
		Message:          fmt.Sprintf("Your booking request for %d service(s) was sent and is awaiting confirmation.", len(bookings)),
		RelatedBookingID: &first.ID,
	})
}

// BookingStatusChanged notifies the customer of the new state; on a
// customer-initiated cancellation the garage owner is told too.
func (s *Service) BookingStatusChanged(ctx context.Context, b *booking.Booking, previous booking.Status) {
	var notifType Type
	var message string

	switch b.Status {
	case booking.StatusConfirmed:
		notifType = BookingConfirmed
		message = fmt.Sprintf("Your booking on %s was confirmed.", b.ScheduledAt.Format("Jan 2, 2006 at 15:04"))
	case booking.StatusCompleted:
		notifType = BookingCompleted
		message = "Your booking was marked as completed. Thanks for choosing us!"
	case booking.StatusCancelled:
		notifType = BookingCancelled
		message = fmt.Sprintf("Your booking on %s was cancelled.", b.ScheduledAt.Format("Jan 2, 2006 at 15:04"))
	default:
		return
	}

	s.create(ctx, &Notification{
		ProfileID:        b.CustomerID,
		Type:             notifType,
		Message:          message,
		RelatedBookingID: &b.ID,
	})

	if b.Status == booking.StatusCancelled && b.Garage.OwnerID != uuid.Nil {
		s.create(ctx, &Notification{
			ProfileID:        b.Garage.OwnerID,
			Type:             BookingCancelled,
			Message:          fmt.Sprintf("A booking on %s was cancelled.", b.ScheduledAt.Format("Jan 2, 2006 at 15:04")),
			RelatedBookingID: &b.ID,
		})
	}
}

// Remind writes a reminder notification for an upcoming booking. Used by the
// scheduled reminder job.
func (s *Service) Remind(ctx context.Context, b *booking.Booking) {
	s.create(ctx, &Notification{
		ProfileID:        b.CustomerID,
		Type:             BookingReminder,
		Message:          fmt.Sprintf("Reminder: your %s appointment at %s is on %s.", b.Service.Name, b.Garage.Name, b.ScheduledAt.Format("Jan 2, 2006 at 15:04")),
		RelatedBookingID: &b.ID,
	})
}

// List returns a page of the profile's notifications.
func (s *Service) List(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	return s.repo.GetByProfileID(ctx, profileID, page, pageSize)
}

// MarkRead marks one notification read.
func (s *Service) MarkRead(ctx context.Context, notificationID, profileID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, profileID)
}

// MarkAllRead marks every unread notification read and returns the count.
func (s *Service) MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, profileID)
}

func (s *Service) create(ctx context.Context, n *Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("Failed to persist notification",
			zap.String("profile_id", n.ProfileID.String()),
			zap.String("type", string(n.Type)),
			zap.Error(err))
	}
}
