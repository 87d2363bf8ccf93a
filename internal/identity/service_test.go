package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
	"motormate_backend/internal/config"
	"motormate_backend/internal/profile"
	"motormate_backend/internal/route"
)

// mockFirebase is a func-based mock of FirebaseAuthority.
type mockFirebase struct {
	verifyFunc           func(ctx context.Context, idToken string) (*firebaseauth.Token, error)
	getUserFunc          func(ctx context.Context, uid string) (*firebaseauth.UserRecord, error)
	createUserFunc       func(ctx context.Context, email, password, displayName string) (*firebaseauth.UserRecord, error)
	verificationLinkFunc func(ctx context.Context, email string) (string, error)
	revokeFunc           func(ctx context.Context, uid string) error

	verificationLinkCalls int
	revokeCalls           int
	claimsByUID           map[string]map[string]interface{}
}

func (m *mockFirebase) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, idToken)
	}
	return nil, errors.New("no verify func")
}

func (m *mockFirebase) GetUser(ctx context.Context, uid string) (*firebaseauth.UserRecord, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, uid)
	}
	return nil, errors.New("no getUser func")
}

func (m *mockFirebase) CreateUser(ctx context.Context, email, password, displayName string) (*firebaseauth.UserRecord, error) {
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, email, password, displayName)
	}
	return nil, errors.New("no createUser func")
}

func (m *mockFirebase) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	m.verificationLinkCalls++
	if m.verificationLinkFunc != nil {
		return m.verificationLinkFunc(ctx, email)
	}
	return "https://example.com/verify", nil
}

func (m *mockFirebase) RevokeRefreshTokens(ctx context.Context, uid string) error {
	m.revokeCalls++
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, uid)
	}
	return nil
}

func (m *mockFirebase) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	if m.claimsByUID == nil {
		m.claimsByUID = make(map[string]map[string]interface{})
	}
	m.claimsByUID[uid] = claims
	return nil
}

// stubProfileRepo backs the resolver and the identity service in these tests.
type stubProfileRepo struct {
	profiles map[string]*profile.Profile
	fail     bool
	created  []*profile.Profile
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: make(map[string]*profile.Profile)}
}

func (s *stubProfileRepo) Create(ctx context.Context, p *profile.Profile) error {
	if s.fail {
		return errors.New("db down")
	}
	p.ID = uuid.New()
	s.profiles[p.FirebaseUID] = p
	s.created = append(s.created, p)
	return nil
}

func (s *stubProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	return nil, common.ErrNotFound
}

func (s *stubProfileRepo) FindByFirebaseUID(ctx context.Context, uid string) (*profile.Profile, error) {
	if s.fail {
		return nil, errors.New("db down")
	}
	if p, ok := s.profiles[uid]; ok {
		return p, nil
	}
	return nil, common.ErrNotFound
}

func (s *stubProfileRepo) FindByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	return nil, common.ErrNotFound
}

func (s *stubProfileRepo) Update(ctx context.Context, p *profile.Profile) error { return nil }

func (s *stubProfileRepo) SetGarageOwnerFlag(ctx context.Context, id uuid.UUID, isGarageOwner bool) error {
	return nil
}

func (s *stubProfileRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (s *stubProfileRepo) OwnsAnyGarage(ctx context.Context, profileID uuid.UUID) (bool, error) {
	return false, nil
}

func newTestService(fb *mockFirebase, repo *stubProfileRepo) *Service {
	logger, _ := zap.NewDevelopment()
	cfg := &config.Config{
		ProfileResolveTimeout: 2 * time.Second,
		ProfileCacheTTL:       30 * time.Minute,
	}
	resolver := profile.NewResolver(repo, fb, cfg, logger)
	return NewService(fb, repo, resolver, logger)
}

func TestSignUp_CreatesAccountAndProfile(t *testing.T) {
	fb := &mockFirebase{
		createUserFunc: func(ctx context.Context, email, password, displayName string) (*firebaseauth.UserRecord, error) {
			return &firebaseauth.UserRecord{UserInfo: &firebaseauth.UserInfo{UID: "uid-new", Email: email}}, nil
		},
	}
	repo := newStubProfileRepo()
	svc := newTestService(fb, repo)

	name := "Dana Driver"
	resp, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "dana@example.com",
		Password: "secret-password",
		FullName: &name,
	})

	require.NoError(t, err)
	assert.True(t, resp.VerificationEmailSent)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "uid-new", repo.created[0].FirebaseUID)
	assert.False(t, repo.created[0].IsGarageOwner)
	assert.Empty(t, fb.claimsByUID)
}

func TestSignUp_GarageOwnerIntentIsPersisted(t *testing.T) {
	fb := &mockFirebase{
		createUserFunc: func(ctx context.Context, email, password, displayName string) (*firebaseauth.UserRecord, error) {
			return &firebaseauth.UserRecord{UserInfo: &firebaseauth.UserInfo{UID: "uid-owner-new", Email: email}}, nil
		},
	}
	repo := newStubProfileRepo()
	svc := newTestService(fb, repo)

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:         "boss@example.com",
		Password:      "secret-password",
		IsGarageOwner: true,
	})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.True(t, repo.created[0].IsGarageOwner)
	require.Contains(t, fb.claimsByUID, "uid-owner-new")
	assert.Equal(t, true, fb.claimsByUID["uid-owner-new"]["is_garage_owner"])
	assert.Equal(t, common.RoleGarageOwner, fb.claimsByUID["uid-owner-new"]["role"])
}

func TestSignUp_ReportsUnsentVerificationEmail(t *testing.T) {
	fb := &mockFirebase{
		createUserFunc: func(ctx context.Context, email, password, displayName string) (*firebaseauth.UserRecord, error) {
			return &firebaseauth.UserRecord{UserInfo: &firebaseauth.UserInfo{UID: "uid-new", Email: email}}, nil
		},
		verificationLinkFunc: func(ctx context.Context, email string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	svc := newTestService(fb, newStubProfileRepo())

	resp, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "dana@example.com",
		Password: "secret-password",
	})

	require.NoError(t, err)
	assert.False(t, resp.VerificationEmailSent)
}

func TestEstablishSession_RejectsInvalidToken(t *testing.T) {
	fb := &mockFirebase{
		verifyFunc: func(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
			return nil, errors.New("token expired")
		},
	}
	svc := newTestService(fb, newStubProfileRepo())

	_, err := svc.EstablishSession(context.Background(), "bad-token")

	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrUnauthorized.Code, apiErr.Code)
}

func TestEstablishSession_FirstUnverifiedSignInRejectedAndResent(t *testing.T) {
	fb := &mockFirebase{
		verifyFunc: func(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
			return &firebaseauth.Token{UID: "uid-unverified"}, nil
		},
		getUserFunc: func(ctx context.Context, uid string) (*firebaseauth.UserRecord, error) {
			return &firebaseauth.UserRecord{
				UserInfo:      &firebaseauth.UserInfo{UID: uid, Email: "dana@example.com"},
				EmailVerified: false,
				UserMetadata:  &firebaseauth.UserMetadata{CreationTimestamp: 1000, LastLogInTimestamp: 1000},
			}, nil
		},
	}
	repo := newStubProfileRepo()
	svc := newTestService(fb, repo)

	_, err := svc.EstablishSession(context.Background(), "token")

	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrEmailNotVerified.Code, apiErr.Code)
	assert.Equal(t, 1, fb.verificationLinkCalls)
	// Rejection happens before any profile work.
	assert.Empty(t, repo.created)
}

func TestEstablishSession_ReturningUnverifiedUserIsAllowed(t *testing.T) {
	fb := &mockFirebase{
		verifyFunc: func(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
			return &firebaseauth.Token{UID: "uid-returning", Claims: map[string]interface{}{}}, nil
		},
		getUserFunc: func(ctx context.Context, uid string) (*firebaseauth.UserRecord, error) {
			return &firebaseauth.UserRecord{
				UserInfo:      &firebaseauth.UserInfo{UID: uid, Email: "dana@example.com"},
				EmailVerified: false,
				UserMetadata:  &firebaseauth.UserMetadata{CreationTimestamp: 1000, LastLogInTimestamp: 99000},
			}, nil
		},
	}
	repo := newStubProfileRepo()
	repo.profiles["uid-returning"] = &profile.Profile{
		BaseModel:   common.BaseModel{ID: uuid.New()},
		FirebaseUID: "uid-returning",
		Email:       "dana@example.com",
	}
	svc := newTestService(fb, repo)

	resp, err := svc.EstablishSession(context.Background(), "token")

	require.NoError(t, err)
	assert.Equal(t, common.RoleCustomer, resp.Identity.Role)
	assert.Equal(t, 0, fb.verificationLinkCalls)
}

func TestEstablishSession_VerifiedCustomerLandsHome(t *testing.T) {
	fb := &mockFirebase{
		verifyFunc: func(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
			return &firebaseauth.Token{UID: "uid-ok", Claims: map[string]interface{}{}}, nil
		},
		getUserFunc: func(ctx context.Context, uid string) (*firebaseauth.UserRecord, error) {
			return &firebaseauth.UserRecord{
				UserInfo:      &firebaseauth.UserInfo{UID: uid, Email: "dana@example.com"},
				EmailVerified: true,
			}, nil
		},
	}
	repo := newStubProfileRepo()
	repo.profiles["uid-ok"] = &profile.Profile{
		BaseModel:   common.BaseModel{ID: uuid.New()},
		FirebaseUID: "uid-ok",
		Email:       "dana@example.com",
	}
	svc := newTestService(fb, repo)

	resp, err := svc.EstablishSession(context.Background(), "token")

	require.NoError(t, err)
	assert.Equal(t, common.RoleCustomer, resp.Identity.Role)
	assert.Equal(t, route.PathHome, resp.LandingPath)
}

func TestEstablishSession_OwnerLandsOnDashboard(t *testing.T) {
	fb := &mockFirebase{
		verifyFunc: func(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
			return &firebaseauth.Token{UID: "uid-owner", Claims: map[string]interface{}{}}, nil
		},
		getUserFunc: func(ctx context.Context, uid string) (*firebaseauth.UserRecord, error) {
			return &firebaseauth.UserRecord{
				UserInfo:      &firebaseauth.UserInfo{UID: uid, Email: "boss@example.com"},
				EmailVerified: true,
			}, nil
		},
	}
	repo := newStubProfileRepo()
	repo.profiles["uid-owner"] = &profile.Profile{
		BaseModel:     common.BaseModel{ID: uuid.New()},
		FirebaseUID:   "uid-owner",
		Email:         "boss@example.com",
		IsGarageOwner: true,
	}
	svc := newTestService(fb, repo)

	resp, err := svc.EstablishSession(context.Background(), "token")

	require.NoError(t, err)
	assert.Equal(t, common.RoleGarageOwner, resp.Identity.Role)
	assert.Equal(t, route.PathAdminDashboard, resp.LandingPath)
}

func TestSignOut_ClearsCacheEvenWhenRevokeFails(t *testing.T) {
	fb := &mockFirebase{
		verifyFunc: func(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
			return &firebaseauth.Token{UID: "uid-owner", Claims: map[string]interface{}{}}, nil
		},
		getUserFunc: func(ctx context.Context, uid string) (*firebaseauth.UserRecord, error) {
			return &firebaseauth.UserRecord{
				UserInfo:      &firebaseauth.UserInfo{UID: uid, Email: "boss@example.com"},
				EmailVerified: true,
			}, nil
		},
		revokeFunc: func(ctx context.Context, uid string) error {
			return errors.New("network partition")
		},
	}
	repo := newStubProfileRepo()
	repo.profiles["uid-owner"] = &profile.Profile{
		BaseModel:     common.BaseModel{ID: uuid.New()},
		FirebaseUID:   "uid-owner",
		Email:         "boss@example.com",
		IsGarageOwner: true,
	}
	svc := newTestService(fb, repo)

	// Warm the role cache, then take the database down.
	_, err := svc.EstablishSession(context.Background(), "token")
	require.NoError(t, err)
	repo.fail = true

	svc.SignOut(context.Background(), "uid-owner")
	assert.Equal(t, 1, fb.revokeCalls)

	// A later degraded resolution must not see the stale owner role.
	resp, err := svc.EstablishSession(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, common.RoleCustomer, resp.Identity.Role)
}
