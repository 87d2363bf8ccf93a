// File: internal/identity/model.go
package identity

import (
	"motormate_backend/internal/profile"
)

// SignUpRequest is the payload for email/password registration. A garage
// owner declares the intent here so the owner role is in place before the
// garage itself is registered.
type SignUpRequest struct {
	Email         string  `json:"email" binding:"required,email,max=255"`
	Password      string  `json:"password" binding:"required,min=8,max=128"`
	FullName      *string `json:"full_name,omitempty" binding:"omitempty,max=255"`
	IsGarageOwner bool    `json:"is_garage_owner"`
}

// SignUpResponse confirms registration. No session is established; the user
// must verify their email and then sign in.
type SignUpResponse struct {
	Email                 string `json:"email"`
	VerificationEmailSent bool   `json:"verification_email_sent"`
}

// EstablishSessionRequest carries the Firebase ID token obtained by the
// client SDK after sign-in.
type EstablishSessionRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// SessionResponse is the server's view of an established session.
type SessionResponse struct {
	Identity profile.ResolvedIdentity `json:"identity"`
	// LandingPath is where the client should navigate after sign-in,
	// decided by the role router.
	LandingPath string `json:"landing_path"`
}

// ResendVerificationRequest asks for the verification email to be re-sent.
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}
