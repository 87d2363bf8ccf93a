// File: internal/profile/model.go
package profile

import (
	"time"

	"github.com/google/uuid"

	"motormate_backend/internal/common"
)

// Profile represents the application-level user record. Identity lives in
// Firebase; this row carries everything the app itself needs to know about
// the person, keyed one-to-one by Firebase UID.
type Profile struct {
	common.BaseModel
	FirebaseUID   string     `gorm:"type:varchar(128);not null;uniqueIndex:idx_profiles_firebase_uid,unique"`
	Email         string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_profiles_email,unique"`
	FullName      *string    `gorm:"type:varchar(255)"`
	Phone         *string    `gorm:"type:varchar(50)"`
	IsGarageOwner bool       `gorm:"not null;default:false"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at"`
}

// TableName specifies the table name for the Profile model.
func (Profile) TableName() string {
	return "profiles"
}

// ResolvedIdentity is the outcome of role resolution for a session. It is
// what route decisions and middleware consume; it never carries an error
// because resolution never fails outright, it degrades.
type ResolvedIdentity struct {
	ProfileID     uuid.UUID `json:"profile_id"`
	FirebaseUID   string    `json:"firebase_uid"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	IsGarageOwner bool      `json:"is_garage_owner"`
	// FromCache is set when the database could not be reached in time and
	// the answer came from the TTL cache or a safe default.
	FromCache bool `json:"from_cache"`
}

// --- DTOs ---

// ProfileResponse defines the structure for profile data sent in API responses.
type ProfileResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FullName      *string    `json:"full_name,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Role          string     `json:"role"`
	IsGarageOwner bool       `json:"is_garage_owner"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UpdateProfileRequest is the payload for profile self-service updates.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" binding:"omitempty,max=255"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,max=50"`
}

// ToProfileResponse converts a Profile model to a ProfileResponse DTO.
func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		ID:            p.ID,
		Email:         p.Email,
		FullName:      p.FullName,
		Phone:         p.Phone,
		Role:          common.DeriveRole(p.IsGarageOwner),
		IsGarageOwner: p.IsGarageOwner,
		LastLoginAt:   p.LastLoginAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
