// File: internal/calendar/service.go
package calendar

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/booking"
	"motormate_backend/internal/common"
)

// Appointments are exported as one-hour events; the catalog carries no
// per-service duration.
const defaultEventDuration = time.Hour

// BookingSource is the slice of the booking repository the calendar needs.
type BookingSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

// LinksResponse is returned to the client that asked for calendar links.
type LinksResponse struct {
	ICSURL            string    `json:"ics_url"`
	GoogleCalendarURL string    `json:"google_calendar_url"`
	OutlookURL        string    `json:"outlook_url"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// Service builds calendar exports for bookings.
type Service struct {
	bookings BookingSource
	signer   *Signer
	baseURL  string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new calendar service. baseURL is the public URL of the
// API, used to build the absolute ICS download link.
func NewService(bookings BookingSource, signer *Signer, baseURL string, logger *zap.Logger) *Service {
	return &Service{
		bookings: bookings,
		signer:   signer,
		baseURL:  baseURL,
		logger:   logger.Named("calendar_service"),
		now:      time.Now,
	}
}

// Links returns download and deep links for the booking. Only the booking's
// customer may request them.
func (s *Service) Links(ctx context.Context, bookingID, customerID uuid.UUID) (*LinksResponse, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, common.ErrForbidden.WithDetails("You can only export your own bookings.")
	}
	if b.Status == booking.StatusCancelled {
		return nil, common.ErrConflict.WithDetails("Cancelled bookings cannot be added to a calendar.")
	}

	token, expiresAt, err := s.signer.Sign(b.ID)
	if err != nil {
		s.logger.Error("Failed to sign calendar link token", zap.Error(err))
		return nil, common.ErrInternalServer
	}

	ev := s.eventFor(b)
	return &LinksResponse{
		ICSURL:            fmt.Sprintf("%s/api/v1/calendar/bookings.ics?token=%s", s.baseURL, url.QueryEscape(token)),
		GoogleCalendarURL: GoogleCalendarURL(ev),
		OutlookURL:        OutlookCalendarURL(ev),
		ExpiresAt:         expiresAt,
	}, nil
}

// ICSForToken verifies the download token and renders the booking as an
// iCalendar document.
func (s *Service) ICSForToken(ctx context.Context, token string) (string, error) {
	bookingID, err := s.signer.Verify(token)
	if err != nil {
		return "", err
	}
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	return RenderICS(s.eventFor(b), s.now()), nil
}

func (s *Service) eventFor(b *booking.Booking) Event {
	location := b.Garage.Address
	if b.Garage.City != "" {
		location = fmt.Sprintf("%s, %s", b.Garage.Address, b.Garage.City)
	}
	description := fmt.Sprintf("Service: %s\nGarage: %s\nPrice: $%.2f", b.Service.Name, b.Garage.Name, b.Price)
	if b.Notes != nil && *b.Notes != "" {
		description += "\nNotes: " + *b.Notes
	}
	return Event{
		UID:         fmt.Sprintf("booking-%s@motormate", b.ID),
		Summary:     eventSummary(b.Service.Name, b.Garage.Name),
		Description: description,
		Location:    location,
		Start:       b.ScheduledAt,
		End:         b.ScheduledAt.Add(defaultEventDuration),
	}
}
