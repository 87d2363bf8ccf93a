// File: internal/booking/service.go
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
	"motormate_backend/internal/garage"
)

// GarageDirectory is the slice of the garage repository the orchestrator
// needs: existence, ownership, and price lookups.
type GarageDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID, preloadOfferings bool) (*garage.Garage, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]garage.Garage, error)
	FindOfferings(ctx context.Context, garageID uuid.UUID, serviceIDs []uuid.UUID) ([]garage.GarageService, error)
}

// CarRegistry answers whether a car belongs to a customer.
type CarRegistry interface {
	BelongsTo(ctx context.Context, carID, ownerID uuid.UUID) (bool, error)
}

// Notifier receives booking lifecycle events. Implementations must treat
// these as best effort; a notification failure never fails the booking.
type Notifier interface {
	BookingsCreated(ctx context.Context, bookings []Booking)
	BookingStatusChanged(ctx context.Context, b *Booking, previous Status)
}

// Service defines the interface for booking business logic.
type Service interface {
	Create(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) ([]Booking, error)
	GetByID(ctx context.Context, callerID uuid.UUID, id uuid.UUID) (*Booking, error)
	ListMyBookings(ctx context.Context, customerID uuid.UUID, q ListQuery) ([]Booking, int64, error)
	ListGarageBookings(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]Booking, int64, error)
	UpdateStatus(ctx context.Context, callerID uuid.UUID, bookingID uuid.UUID, newStatus Status) (*Booking, error)
	CancelCheckout(ctx context.Context, customerID, checkoutID uuid.UUID) ([]Booking, error)
}

type service struct {
	repo     Repository
	garages  GarageDirectory
	cars     CarRegistry
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new booking service.
func NewService(repo Repository, garages GarageDirectory, cars CarRegistry, notifier Notifier, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		garages:  garages,
		cars:     cars,
		notifier: notifier,
		logger:   logger.Named("booking_service"),
		now:      time.Now,
	}
}

// Create runs the checkout. Every precondition is checked before the first
// write, so a failed checkout leaves zero rows behind; the rows themselves
// go in atomically, one per service, sharing a checkout ID.
func (s *service) Create(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) ([]Booking, error) {
	if customerID == uuid.Nil {
		return nil, common.ErrUnauthorized.WithDetails("A signed-in session is required to book.")
	}

	// A slot exactly at now is the boundary case and is allowed.
	if req.ScheduledAt.Before(s.now()) {
		return nil, common.NewValidationAPIError(map[string]string{
			"scheduled_at": "The appointment time cannot be in the past.",
		})
	}

	seen := make(map[uuid.UUID]struct{}, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		if _, dup := seen[id]; dup {
			return nil, common.NewValidationAPIError(map[string]string{
				"service_ids": "Duplicate services in one checkout are not allowed.",
			})
		}
		seen[id] = struct{}{}
	}

	if _, err := s.garages.FindByID(ctx, req.GarageID, false); err != nil {
		return nil, err
	}

	if req.CarID == uuid.Nil {
		return nil, common.NewValidationAPIError(map[string]string{
			"car_id": "A car is required for a booking.",
		})
	}
	owns, err := s.cars.BelongsTo(ctx, req.CarID, customerID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, common.ErrForbidden.WithDetails("The selected car does not belong to you.")
	}

	offerings, err := s.garages.FindOfferings(ctx, req.GarageID, req.ServiceIDs)
	if err != nil {
		return nil, err
	}
	priceByService := make(map[uuid.UUID]float64, len(offerings))
	for _, o := range offerings {
		priceByService[o.ServiceID] = o.Price
	}
	var missing []string
	for _, id := range req.ServiceIDs {
		if _, ok := priceByService[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, common.ErrUnprocessableEntity.WithDetails(
			fmt.Sprintf("This garage does not offer the requested services: %v", missing))
	}

	checkoutID := uuid.New()
	bookings := make([]Booking, len(req.ServiceIDs))
	for i, serviceID := range req.ServiceIDs {
		bookings[i] = Booking{
			CheckoutID:  checkoutID,
			CustomerID:  customerID,
			GarageID:    req.GarageID,
			ServiceID:   serviceID,
			CarID:       req.CarID,
			ScheduledAt: req.ScheduledAt.UTC(),
			Status:      StatusPending,
			Price:       priceByService[serviceID],
			Notes:       req.Notes,
		}
	}

	if err := s.repo.CreateBatch(ctx, bookings); err != nil {
		s.logger.Error("Checkout transaction failed",
			zap.String("customer_id", customerID.String()),
			zap.String("garage_id", req.GarageID.String()),
			zap.Int("services", len(req.ServiceIDs)),
			zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not create the bookings. Nothing was saved.")
	}

	created, err := s.repo.FindByCheckoutID(ctx, checkoutID)
	if err != nil {
		// Rows are committed; fall back to what we built.
		created = bookings
	}

	if s.notifier != nil {
		s.notifier.BookingsCreated(ctx, created)
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, callerID uuid.UUID, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.actorFor(ctx, callerID, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListMyBookings(ctx context.Context, customerID uuid.UUID, q ListQuery) ([]Booking, int64, error) {
	return s.repo.FindByCustomerID(ctx, customerID, q)
}

// ListGarageBookings returns bookings across all garages the owner manages.
func (s *service) ListGarageBookings(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]Booking, int64, error) {
	garages, err := s.garages.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uuid.UUID, len(garages))
	for i, g := range garages {
		ids[i] = g.ID
	}
	return s.repo.FindByGarageIDs(ctx, ids, q)
}

// UpdateStatus applies a lifecycle change after checking both who the caller
// is in relation to this booking and whether the transition is legal.
func (s *service) UpdateStatus(ctx context.Context, callerID uuid.UUID, bookingID uuid.UUID, newStatus Status) (*Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	actor, err := s.actorFor(ctx, callerID, b)
	if err != nil {
		return nil, err
	}

	if !CanTransition(actor, b.Status, newStatus) {
		return nil, common.ErrConflict.WithDetails(
			fmt.Sprintf("A %s cannot move a booking from %s to %s.", actor, b.Status, newStatus))
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, newStatus); err != nil {
		return nil, err
	}

	previous := b.Status
	b.Status = newStatus
	if s.notifier != nil {
		s.notifier.BookingStatusChanged(ctx, b, previous)
	}
	return b, nil
}

// CancelCheckout cancels every still-cancellable booking in a checkout on
// behalf of the customer who made it.
func (s *service) CancelCheckout(ctx context.Context, customerID, checkoutID uuid.UUID) ([]Booking, error) {
	bookings, err := s.repo.FindByCheckoutID(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, common.ErrNotFound.WithDetails("Checkout not found.")
	}
	if bookings[0].CustomerID != customerID {
		return nil, common.ErrForbidden.WithDetails("This checkout belongs to another customer.")
	}

	var updated []Booking
	for i := range bookings {
		b := bookings[i]
		if !CanTransition(ActorCustomer, b.Status, StatusCancelled) {
			updated = append(updated, b)
			continue
		}
		if err := s.repo.UpdateStatus(ctx, b.ID, StatusCancelled); err != nil {
			return nil, err
		}
		previous := b.Status
		b.Status = StatusCancelled
		if s.notifier != nil {
			s.notifier.BookingStatusChanged(ctx, &b, previous)
		}
		updated = append(updated, b)
	}
	return updated, nil
}

// actorFor classifies the caller against a booking: the booking's customer,
// the owner of the booking's garage, or nobody.
func (s *service) actorFor(ctx context.Context, callerID uuid.UUID, b *Booking) (Actor, error) {
	if callerID == uuid.Nil {
		return "", common.ErrUnauthorized
	}
	if b.CustomerID == callerID {
		return ActorCustomer, nil
	}
	g, err := s.garages.FindByID(ctx, b.GarageID, false)
	if err != nil {
		return "", common.ErrForbidden.WithDetails("You are not a party to this booking.")
	}
	if g.OwnerID == callerID {
		return ActorGarageOwner, nil
	}
	return "", common.ErrForbidden.WithDetails("You are not a party to this booking.")
}
