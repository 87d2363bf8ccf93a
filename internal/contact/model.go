// File: internal/contact/model.go
package contact

import (
	"time"

	"github.com/google/uuid"

	"motormate_backend/internal/common"
)

// Message is a contact-form submission. Submissions are accepted from
// anonymous visitors, so everything identifying lives in the row itself.
type Message struct {
	common.BaseModel
	Name      string     `gorm:"type:varchar(255);not null"`
	Email     string     `gorm:"type:varchar(255);not null"`
	Subject   *string    `gorm:"type:varchar(255)"`
	Body      string     `gorm:"type:text;not null"`
	ProfileID *uuid.UUID `gorm:"type:uuid"`
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "contact_messages"
}

// --- DTOs ---

// SubmitRequest is the contact form payload.
type SubmitRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Email   string  `json:"email" binding:"required,email,max=255"`
	Subject *string `json:"subject,omitempty" binding:"omitempty,max=255"`
	Body    string  `json:"body" binding:"required,max=5000"`
}

// MessageResponse confirms a stored submission.
type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
