// File: internal/notification/model.go
package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type defines the type of notification.
type Type string

const (
	BookingRequested Type = "booking_requested"
	BookingConfirmed Type = "booking_confirmed"
	BookingCompleted Type = "booking_completed"
	BookingCancelled Type = "booking_cancelled"
	BookingReminder  Type = "booking_reminder"
)

// Notification represents an in-app notification for a profile. Rows are
// immutable once created except for the read flag.
type Notification struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ProfileID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_notification_profile_status" json:"profile_id"`
	Type             Type       `gorm:"type:varchar(100);not null" json:"type"`
	Message          string     `gorm:"type:text;not null" json:"message"`
	RelatedBookingID *uuid.UUID `gorm:"type:uuid" json:"related_booking_id,omitempty"`
	IsRead           bool       `gorm:"not null;default:false;index:idx_notification_profile_status" json:"is_read"`
	CreatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_notification_profile_status" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate generates the ID application-side. Postgres and the sqlite
// test databases share this path, so no uuid extension is required.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
