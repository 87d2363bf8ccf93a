// File: internal/calendar/token.go
package calendar

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"motormate_backend/internal/common"
)

const tokenAudience = "calendar-download"

// Signer issues and verifies the short-lived tokens embedded in calendar
// download links. The link has to work from calendar apps that carry no auth
// header, so the token itself is the credential.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a token signer. secret must be non-empty; the handler
// layer refuses to register calendar routes without one.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign issues a token granting download access to one booking.
func (s *Signer) Sign(bookingID uuid.UUID) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("calendar link secret is not configured")
	}
	expiresAt := s.now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   bookingID.String(),
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks a download token and returns the booking ID it grants.
func (s *Signer) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithAudience(tokenAudience), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return uuid.Nil, common.ErrUnauthorized.WithDetails("Calendar link is invalid or has expired.")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, common.ErrUnauthorized.WithDetails("Calendar link is invalid or has expired.")
	}
	bookingID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, common.ErrUnauthorized.WithDetails("Calendar link is invalid or has expired.")
	}
	return bookingID, nil
}
