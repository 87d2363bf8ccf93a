// File: internal/booking/model.go
package booking

import (
	"time"

	"github.com/google/uuid"

	"motormate_backend/internal/common"
	"motormate_backend/internal/garage"
)

// Status is the lifecycle state of a booking row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Booking is one service appointment at a garage. A multi-service checkout
// creates one row per service; the rows share a CheckoutID so they can be
// shown and cancelled together.
type Booking struct {
	common.BaseModel
	CheckoutID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_bookings_checkout_id"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_bookings_customer_id"`
	GarageID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_bookings_garage_id"`
	ServiceID   uuid.UUID  `gorm:"type:uuid;not null"`
	CarID       uuid.UUID  `gorm:"type:uuid;not null"`
	ScheduledAt time.Time  `gorm:"not null;index:idx_bookings_scheduled_at"`
	Status      Status     `gorm:"type:varchar(20);not null;default:'pending';index:idx_bookings_status"`
	// Price is snapshotted from garage_services at creation time so later
	// price changes never alter an existing booking.
	Price float64 `gorm:"type:numeric(10,2);not null"`
	Notes *string `gorm:"type:text"`

	Garage  garage.Garage         `gorm:"foreignKey:GarageID;references:ID"`
	Service garage.CatalogService `gorm:"foreignKey:ServiceID;references:ID"`
}

// TableName specifies the table name for the Booking model.
func (Booking) TableName() string {
	return "bookings"
}

// --- DTOs ---

// CreateBookingRequest is a checkout: one appointment slot, one garage, one
// or more services.
type CreateBookingRequest struct {
	GarageID    uuid.UUID   `json:"garage_id" binding:"required"`
	ServiceIDs  []uuid.UUID `json:"service_ids" binding:"required,min=1,max=20"`
	CarID       uuid.UUID   `json:"car_id" binding:"required"`
	ScheduledAt time.Time   `json:"scheduled_at" binding:"required"`
	Notes       *string     `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// UpdateStatusRequest moves a booking to a new status.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

// BookingResponse defines the structure for booking data in API responses.
type BookingResponse struct {
	ID          uuid.UUID  `json:"id"`
	CheckoutID  uuid.UUID  `json:"checkout_id"`
	GarageID    uuid.UUID  `json:"garage_id"`
	GarageName  string     `json:"garage_name,omitempty"`
	ServiceID   uuid.UUID  `json:"service_id"`
	ServiceName string     `json:"service_name,omitempty"`
	CarID       uuid.UUID  `json:"car_id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Status      Status     `json:"status"`
	Price       float64    `json:"price"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ListQuery filters booking lists.
type ListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	Upcoming bool   `form:"upcoming"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToBookingResponse converts a Booking model to a BookingResponse DTO.
func ToBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		CheckoutID:  b.CheckoutID,
		GarageID:    b.GarageID,
		GarageName:  b.Garage.Name,
		ServiceID:   b.ServiceID,
		ServiceName: b.Service.Name,
		CarID:       b.CarID,
		ScheduledAt: b.ScheduledAt,
		Status:      b.Status,
		Price:       b.Price,
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
	}
}
