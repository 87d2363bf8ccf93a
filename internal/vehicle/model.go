// File: internal/vehicle/model.go
package vehicle

import (
	"time"

	"github.com/google/uuid"

	"motormate_backend/internal/common"
)

// Car represents a customer's vehicle.
type Car struct {
	common.BaseModel
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index:idx_cars_owner_id"`
	Make         string    `gorm:"type:varchar(100);not null"`
	Model        string    `gorm:"type:varchar(100);not null"`
	Year         int       `gorm:"not null"`
	PlateNumber  *string   `gorm:"type:varchar(50)"`
	Color        *string   `gorm:"type:varchar(50)"`
	DocumentKey  *string   `gorm:"type:text"`
	DocumentName *string   `gorm:"type:varchar(255)"`
}

// TableName specifies the table name for the Car model.
func (Car) TableName() string {
	return "cars"
}

// --- DTOs ---

// CarResponse defines the structure for car data sent in API responses.
type CarResponse struct {
	ID          uuid.UUID `json:"id"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	PlateNumber *string   `json:"plate_number,omitempty"`
	Color       *string   `json:"color,omitempty"`
	DocumentURL *string   `json:"document_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCarRequest registers a car for the authenticated customer.
type CreateCarRequest struct {
	Make        string  `json:"make" binding:"required,max=100"`
	Model       string  `json:"model" binding:"required,max=100"`
	Year        int     `json:"year" binding:"required,gt=1900"`
	PlateNumber *string `json:"plate_number,omitempty" binding:"omitempty,max=50"`
	Color       *string `json:"color,omitempty" binding:"omitempty,max=50"`
}
