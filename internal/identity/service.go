// File: internal/identity/service.go
package identity

import (
	"context"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
	"motormate_backend/internal/firebase"
	"motormate_backend/internal/profile"
	"motormate_backend/internal/route"
)

// FirebaseAuthority is the slice of the Firebase service the session store
// needs. Kept as an interface so tests can stand in for the Admin SDK.
type FirebaseAuthority interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
	GetUser(ctx context.Context, uid string) (*firebaseauth.UserRecord, error)
	CreateUser(ctx context.Context, email, password, displayName string) (*firebaseauth.UserRecord, error)
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

var _ FirebaseAuthority = (*firebase.Service)(nil)

// Service owns the session lifecycle: registration, session establishment,
// and sign out. Credentials themselves live in Firebase; this service binds
// them to application profiles and roles.
type Service struct {
	fb          FirebaseAuthority
	profileRepo profile.Repository
	resolver    *profile.Resolver
	logger      *zap.Logger
}

// NewService creates a new identity service.
func NewService(fb FirebaseAuthority, profileRepo profile.Repository, resolver *profile.Resolver, logger *zap.Logger) *Service {
	return &Service{
		fb:          fb,
		profileRepo: profileRepo,
		resolver:    resolver,
		logger:      logger.Named("identity"),
	}
}

// SignUp registers a new email/password user. The Firebase account is
// created unverified and a verification email goes out; no session exists
// until the user verifies and signs in.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	displayName := ""
	if req.FullName != nil {
		displayName = *req.FullName
	}

	rec, err := s.fb.CreateUser(ctx, req.Email, req.Password, displayName)
	if err != nil {
		return nil, common.ErrConflict.WithDetails("An account with this email may already exist.")
	}

	// A declared garage owner gets the role stashed in custom claims, so
	// the resolver answers with the right role even before the profile row
	// is readable.
	if req.IsGarageOwner {
		if err := s.fb.SetCustomUserClaims(ctx, rec.UID, map[string]interface{}{
			"is_garage_owner": true,
			"role":            common.RoleGarageOwner,
		}); err != nil {
			s.logger.Warn("Failed to stash owner role in custom claims at sign up",
				zap.String("firebase_uid", rec.UID), zap.Error(err))
		}
	}

	// Create the profile row now so first login does not depend on the
	// resolver's bootstrap path. A failure here is recoverable, the
	// resolver will bootstrap on first login.
	p := &profile.Profile{
		FirebaseUID:   rec.UID,
		Email:         req.Email,
		FullName:      req.FullName,
		IsGarageOwner: req.IsGarageOwner,
	}
	if err := s.profileRepo.Create(ctx, p); err != nil {
		s.logger.Warn("Profile creation at sign up failed; resolver will bootstrap on first login",
			zap.String("firebase_uid", rec.UID), zap.Error(err))
	}

	sent := true
	if _, err := s.fb.EmailVerificationLink(ctx, req.Email); err != nil {
		s.logger.Warn("Failed to send verification email at sign up",
			zap.String("email", req.Email), zap.Error(err))
		sent = false
	}

	return &SignUpResponse{
		Email:                 req.Email,
		VerificationEmailSent: sent,
	}, nil
}

// EstablishSession verifies a Firebase ID token and turns it into an
// application session. An unverified email blocks the very first sign-in
// only, before any profile work happens, with the verification email
// re-sent best effort so the client can tell the user to check their inbox.
// Accounts that have signed in before are let through unverified.
func (s *Service) EstablishSession(ctx context.Context, idToken string) (*SessionResponse, error) {
	token, err := s.fb.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired credentials.")
	}

	rec, err := s.fb.GetUser(ctx, token.UID)
	if err != nil {
		s.logger.Error("Failed to load Firebase user record during session establishment",
			zap.String("uid", token.UID), zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Could not verify account status. Please try again.")
	}

	if !rec.EmailVerified && isFirstSignIn(rec) {
		if _, lerr := s.fb.EmailVerificationLink(ctx, rec.Email); lerr != nil {
			s.logger.Warn("Failed to re-send verification email on unverified login",
				zap.String("uid", token.UID), zap.Error(lerr))
		}
		return nil, common.ErrEmailNotVerified
	}

	identity := s.resolver.Resolve(ctx, token.UID, rec.Email, token.Claims)

	if identity.ProfileID != uuid.Nil {
		if err := s.profileRepo.TouchLastLogin(ctx, identity.ProfileID, time.Now().UTC()); err != nil {
			s.logger.Debug("Failed to record last login", zap.Error(err))
		}
	}

	return &SessionResponse{
		Identity:    identity,
		LandingPath: route.LandingPath(identity.Role),
	}, nil
}

// isFirstSignIn reports whether the record has never completed a sign-in
// before this one. Firebase stamps LastLogIn at sign-in time, so on the
// first login it still equals the creation timestamp.
func isFirstSignIn(rec *firebaseauth.UserRecord) bool {
	md := rec.UserMetadata
	if md == nil || md.LastLogInTimestamp == 0 {
		return true
	}
	return md.LastLogInTimestamp == md.CreationTimestamp
}

// SignOut ends the session for a Firebase UID. The local role cache is
// cleared first; the remote token revocation is best effort and its failure
// never blocks sign out.
func (s *Service) SignOut(ctx context.Context, firebaseUID string) {
	s.resolver.Invalidate(firebaseUID)

	if err := s.fb.RevokeRefreshTokens(ctx, firebaseUID); err != nil {
		s.logger.Warn("Token revocation failed during sign out; local session is already cleared",
			zap.String("uid", firebaseUID), zap.Error(err))
	}
}

// ResendVerificationEmail re-sends the verification email for an address.
// The response is identical whether or not the account exists.
func (s *Service) ResendVerificationEmail(ctx context.Context, email string) {
	if _, err := s.fb.EmailVerificationLink(ctx, email); err != nil {
		s.logger.Debug("Verification email resend failed", zap.String("email", email), zap.Error(err))
	}
}
