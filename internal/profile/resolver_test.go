package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
)

// mockProfileRepository is a func-based mock of the Repository interface so
// each test can shape exactly the behavior it needs.
type mockProfileRepository struct {
	findByFirebaseUIDFunc  func(ctx context.Context, uid string) (*Profile, error)
	ownsAnyGarageFunc      func(ctx context.Context, profileID uuid.UUID) (bool, error)
	createFunc             func(ctx context.Context, p *Profile) error
	setGarageOwnerFlagCh   chan uuid.UUID
	setGarageOwnerFlagFunc func(ctx context.Context, id uuid.UUID, isGarageOwner bool) error
}

func (m *mockProfileRepository) Create(ctx context.Context, p *Profile) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = uuid.New()
	return nil
}

func (m *mockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return nil, common.ErrNotFound
}

func (m *mockProfileRepository) FindByFirebaseUID(ctx context.Context, uid string) (*Profile, error) {
	if m.findByFirebaseUIDFunc != nil {
		return m.findByFirebaseUIDFunc(ctx, uid)
	}
	return nil, common.ErrNotFound
}

func (m *mockProfileRepository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	return nil, common.ErrNotFound
}

func (m *mockProfileRepository) Update(ctx context.Context, p *Profile) error { return nil }

func (m *mockProfileRepository) SetGarageOwnerFlag(ctx context.Context, id uuid.UUID, isGarageOwner bool) error {
	if m.setGarageOwnerFlagCh != nil {
		m.setGarageOwnerFlagCh <- id
	}
	if m.setGarageOwnerFlagFunc != nil {
		return m.setGarageOwnerFlagFunc(ctx, id, isGarageOwner)
	}
	return nil
}

func (m *mockProfileRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (m *mockProfileRepository) OwnsAnyGarage(ctx context.Context, profileID uuid.UUID) (bool, error) {
	if m.ownsAnyGarageFunc != nil {
		return m.ownsAnyGarageFunc(ctx, profileID)
	}
	return false, nil
}

type mockClaimsWriter struct {
	calls chan map[string]interface{}
}

func (m *mockClaimsWriter) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	if m.calls != nil {
		m.calls <- claims
	}
	return nil
}

func newTestResolver(repo Repository, claims ClaimsWriter) *Resolver {
	logger, _ := zap.NewDevelopment()
	return &Resolver{
		repo:    repo,
		claims:  claims,
		cache:   newRoleCache(30 * time.Minute),
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

func existingProfile(uid string, isOwner bool) *Profile {
	return &Profile{
		BaseModel:     common.BaseModel{ID: uuid.New()},
		FirebaseUID:   uid,
		Email:         "driver@example.com",
		IsGarageOwner: isOwner,
	}
}

func TestResolver_OwnerViaProfileFlag(t *testing.T) {
	p := existingProfile("uid-owner", true)
	repo := &mockProfileRepository{
		findByFirebaseUIDFunc: func(ctx context.Context, uid string) (*Profile, error) {
			return p, nil
		},
	}
	r := newTestResolver(repo, nil)

	identity := r.Resolve(context.Background(), "uid-owner", "driver@example.com", nil)

	assert.Equal(t, common.RoleGarageOwner, identity.Role)
	assert.True(t, identity.IsGarageOwner)
	assert.Equal(t, p.ID, identity.ProfileID)
	assert.False(t, identity.FromCache)
}

func TestResolver_CustomerDefault(t *testing.T) {
	p := existingProfile("uid-customer", false)
	repo := &mockProfileRepository{
		findByFirebaseUIDFunc: func(ctx context.Context, uid string) (*Profile, error) {
			return p, nil
		},
	}
	r := newTestResolver(repo, nil)

	identity := r.Resolve(context.Background(), "uid-customer", "driver@example.com", nil)

	assert.Equal(t, common.RoleCustomer, identity.Role)
	assert.False(t, identity.IsGarageOwner)
}

func TestResolver_OwnerViaTokenClaims(t *testing.T) {
	p := existingProfile("uid-claims", false)
	repo := &mockProfileRepository{
		findByFirebaseUIDFunc: func(ctx context.Context, uid string) (*Profile, error) {
			return p, nil
		},
	}
	r := newTestResolver(repo, nil)

	identity := r.Resolve(context.Background(), "uid-claims", "driver@example.com",
		map[string]interface{}{"role": common.RoleGarageOwner})

	assert.Equal(t, common.RoleGarageOwner, identity.Role)
}

func TestResolver_HealsStaleFlagWhenGarageExists(t *testing.T) {
	p := existingProfile("uid-stale", false)
	flagCh := make(chan uuid.UUID, 1)
	repo := &mockProfileRepository{
		findByFirebaseUIDFunc: func(ctx context.Context, uid string) (*Profile, error) {
			return p, nil
		},
		ownsAnyGarageFunc: func(ctx context.Context, profileID uuid.UUID) (bool, error) {
			return true, nil
		},
		setGarageOwnerFlagCh: flagCh,
	}
	claims := &mockClaimsWriter{calls: make(chan map[string]interface{}, 1)}
	r := newTestResolver(repo, claims)

	identity := r.Resolve(context.Background(), "uid-stale", "driver@example.com", nil)

	// The garage row wins over the stale flag immediately.
	assert.Equal(t, common.RoleGarageOwner, identity.Role)

	// The corrective writes happen in the background.
	select {
	case healedID := <-flagCh:
		assert.Equal(t, p.ID, healedID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected corrective is_garage_owner write")
	}
	select {
	case written := <-claims.calls:
		assert.Equal(t, true, written["is_garage_owner"])
	case <-time.After(2 * time.Second):
		t.Fatal("expected corrective claim write")
	}
}

func TestResolver_GarageCheckFailureDoesNotDemote(t *testing.T) {
	p := existingProfile("uid-flap", true)
	repo := &mockProfileRepository{
		findByFirebaseUIDFunc: func(ctx context.Context, uid string) (*Profile, error) {
			return p, nil
		},
		ownsAnyGarageFunc: func(ctx context.Context, profileID uuid.UUID) (bool, error) {
			return false, errors.New("connection refused")
		},
	}
	r := newTestResolver(repo, nil)

	identity := r.Resolve(context.Background(), "uid-flap", "driver@example.com", nil)

	assert.Equal(t, common.RoleGarageOwner, identity.Role)
}

func TestResolver_DegradesToCacheOnDBError(t *testing.T) {
	p := existingProfile("uid-cache", true)
	failing := false
	repo := &mockProfileRepository{
		findByFirebaseUIDFunc: func(ctx context.Context, uid string) (*Profile, error) {
			if failing {
				return nil, errors.New("connection refused")
			}
			return p, nil
		},
	}
	r := newTestResolver(repo, nil)

	first := r.Resolve(context.Background(), "uid-cache", "driver@example.com", nil)
	require.Equal(t, common.RoleGarageOwner, first.Role)

	failing = true
	second := r.Resolve(context.Background(), "uid-cache", "driver@example.com", nil)

	assert.Equal(t, common.RoleGarageOwner, second.Role)
	assert.True(t, second.FromCache)
	assert.Equal(t, p.ID, second.ProfileID)
}

func TestResolver_DegradesToCustomerWhenCacheCold(t *testing.T) {
	repo := &mockProfileRepository{
		findByFirebaseUIDFunc: func(ctx context.Context, uid string) (*Profile, error) {
			return nil, errors.New("connection refused")
		},
	}
	r := newTestResolver(repo, nil)

	identity := r.Resolve(context.Background(), "uid-cold", "driver@example.com", nil)

	assert.Equal(t, common.RoleCustomer, identity.Role)
	assert.False(t, identity.FromCache)
	assert.Equal(t, uuid.Nil, identity.ProfileID)
}

func TestResolver_BootstrapsProfileOnFirstLogin(t *testing.T) {
	var created *Profile
	repo := &mockProfileRepository{
		findByFirebaseUIDFunc: func(ctx context.Context, uid string) (*Profile, error) {
			return nil, common.ErrNotFound
		},
		createFunc: func(ctx context.Context, p *Profile) error {
			p.ID = uuid.New()
			created = p
			return nil
		},
	}
	r := newTestResolver(repo, nil)

	identity := r.Resolve(context.Background(), "uid-new", "fresh@example.com", nil)

	require.NotNil(t, created)
	assert.Equal(t, "uid-new", created.FirebaseUID)
	assert.Equal(t, "fresh@example.com", created.Email)
	assert.Equal(t, common.RoleCustomer, identity.Role)
	assert.Equal(t, created.ID, identity.ProfileID)
}

func TestResolver_InvalidateClearsCachedRole(t *testing.T) {
	p := existingProfile("uid-out", true)
	failing := false
	repo := &mockProfileRepository{
		findByFirebaseUIDFunc: func(ctx context.Context, uid string) (*Profile, error) {
			if failing {
				return nil, errors.New("connection refused")
			}
			return p, nil
		},
	}
	r := newTestResolver(repo, nil)

	_ = r.Resolve(context.Background(), "uid-out", "driver@example.com", nil)
	r.Invalidate("uid-out")

	failing = true
	identity := r.Resolve(context.Background(), "uid-out", "driver@example.com", nil)

	// With the cache cleared the degraded answer is the customer default,
	// not the stale owner role.
	assert.Equal(t, common.RoleCustomer, identity.Role)
}
