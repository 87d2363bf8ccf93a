// File: internal/firebase/service.go
package firebase

import (
	"context"
	"fmt"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"motormate_backend/internal/config"
)

// Service provides methods to interact with Firebase Authentication via the
// Admin SDK. It is the single owner of the auth.Client for the process.
type Service struct {
	authClient *auth.Client
	logger     *zap.Logger
}

// NewService initializes the Firebase Admin SDK and creates a new Service.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error

	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		// Let the SDK infer the project from the credentials file.
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &Service{
		authClient: authClient,
		logger:     logger,
	}, nil
}

// VerifyIDToken verifies a Firebase ID token and returns the token claims.
func (s *Service) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}

	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}

	s.logger.Debug("Firebase ID token verified successfully", zap.String("uid", token.UID))
	return token, nil
}

// GetUser fetches the Firebase user record for the given UID. The record
// carries EmailVerified, which session establishment checks before any
// profile work happens.
func (s *Service) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	rec, err := s.authClient.GetUser(ctx, uid)
	if err != nil {
		s.logger.Warn("Failed to fetch Firebase user record", zap.Error(err), zap.String("uid", uid))
		return nil, fmt.Errorf("failed to get Firebase user: %w", err)
	}
	return rec, nil
}

// CreateUser creates a Firebase Authentication user for email/password sign up.
// The account starts unverified; Firebase sends the verification email.
func (s *Service) CreateUser(ctx context.Context, email, password, displayName string) (*auth.UserRecord, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}

	rec, err := s.authClient.CreateUser(ctx, params)
	if err != nil {
		s.logger.Warn("Failed to create Firebase user", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to create Firebase user: %w", err)
	}
	s.logger.Info("Created Firebase user", zap.String("uid", rec.UID))
	return rec, nil
}

// EmailVerificationLink generates an email verification link for the user.
// Used when a sign up or an unverified first login needs the verification
// mail (re)sent.
func (s *Service) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	link, err := s.authClient.EmailVerificationLink(ctx, email)
	if err != nil {
		s.logger.Warn("Failed to generate email verification link", zap.Error(err), zap.String("email", email))
		return "", fmt.Errorf("failed to generate email verification link: %w", err)
	}
	return link, nil
}

// SetCustomUserClaims writes custom claims on the Firebase user. The resolver
// uses this to keep the is_garage_owner claim in line with the database.
func (s *Service) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	if err := s.authClient.SetCustomUserClaims(ctx, uid, claims); err != nil {
		s.logger.Warn("Failed to set custom user claims", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to set custom user claims: %w", err)
	}
	return nil
}

// RevokeRefreshTokens revokes all refresh tokens for a given user.
func (s *Service) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	s.logger.Info("Successfully revoked refresh tokens for user", zap.String("uid", uid))
	return nil
}
