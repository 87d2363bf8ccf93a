// File: internal/calendar/token_test.go
package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	signer := NewSigner("test-secret", 48*time.Hour)
	bookingID := uuid.New()

	token, expiresAt, err := signer.Sign(bookingID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), expiresAt, time.Minute)

	got, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, bookingID, got)
}

func TestSigner_RejectsExpiredToken(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }

	token, _, err := signer.Sign(uuid.New())
	require.NoError(t, err)

	signer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = signer.Verify(token)
	assert.Error(t, err)
}

func TestSigner_RejectsTokenSignedWithDifferentSecret(t *testing.T) {
	issuer := NewSigner("secret-a", time.Hour)
	verifier := NewSigner("secret-b", time.Hour)

	token, _, err := issuer.Sign(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestSigner_RejectsGarbage(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)

	_, err := signer.Verify("not-a-token")
	assert.Error(t, err)
}

func TestSigner_RefusesToSignWithoutSecret(t *testing.T) {
	signer := NewSigner("", time.Hour)

	_, _, err := signer.Sign(uuid.New())
	assert.Error(t, err)
}
