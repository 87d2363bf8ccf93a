// File: internal/profile/resolver.go
package profile

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
	"motormate_backend/internal/config"
	"motormate_backend/internal/firebase"
)

// ClaimsWriter is the slice of the Firebase service the resolver needs for
// its corrective claim write.
type ClaimsWriter interface {
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}

var _ ClaimsWriter = (*firebase.Service)(nil)

// Resolver turns an authenticated Firebase identity into an application role.
// Resolution is deliberately infallible: a database outage degrades the
// answer (cached role, then the customer default) but never produces an
// error. Callers must therefore treat the result as advisory for routing and
// enforce real authorization at the data layer.
type Resolver struct {
	repo    Repository
	claims  ClaimsWriter
	cache   *roleCache
	timeout time.Duration
	logger  *zap.Logger
}

// NewResolver creates a Resolver with the configured hard timeout and cache TTL.
func NewResolver(repo Repository, fbService ClaimsWriter, cfg *config.Config, logger *zap.Logger) *Resolver {
	return &Resolver{
		repo:    repo,
		claims:  fbService,
		cache:   newRoleCache(cfg.ProfileCacheTTL),
		timeout: cfg.ProfileResolveTimeout,
		logger:  logger.Named("profile_resolver"),
	}
}

// tokenClaims is the subset of Firebase custom claims the resolver reads.
type tokenClaims struct {
	IsGarageOwner bool
}

// claimsFromToken extracts the resolver-relevant claims from a verified
// Firebase token claim map.
func claimsFromToken(claims map[string]interface{}) tokenClaims {
	tc := tokenClaims{}
	if v, ok := claims["is_garage_owner"].(bool); ok {
		tc.IsGarageOwner = v
	}
	if v, ok := claims["role"].(string); ok && v == common.RoleGarageOwner {
		tc.IsGarageOwner = true
	}
	return tc
}

// Resolve determines the role for a verified Firebase identity.
//
// The database reads (profile row and garage existence) run concurrently
// under a hard timeout. A profile whose is_garage_owner flag disagrees with
// actual garage ownership is corrected in the background. On timeout or
// error the cached answer is returned if fresh, otherwise the identity
// defaults to customer.
func (r *Resolver) Resolve(ctx context.Context, firebaseUID, email string, claims map[string]interface{}) ResolvedIdentity {
	tc := claimsFromToken(claims)

	rctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type profileResult struct {
		profile *Profile
		err     error
	}
	type garageResult struct {
		owns bool
		err  error
	}

	profileCh := make(chan profileResult, 1)
	garageCh := make(chan garageResult, 1)

	go func() {
		p, err := r.repo.FindByFirebaseUID(rctx, firebaseUID)
		profileCh <- profileResult{profile: p, err: err}
	}()

	var p *Profile
	var pErr error
	select {
	case res := <-profileCh:
		p, pErr = res.profile, res.err
	case <-rctx.Done():
		pErr = rctx.Err()
	}

	if pErr != nil {
		if apiErr, ok := common.IsAPIError(pErr); ok && apiErr.StatusCode == http.StatusNotFound {
			// No profile row yet. First login after sign up; bootstrap one.
			p = r.bootstrapProfile(rctx, firebaseUID, email, tc)
		} else {
			return r.degrade(firebaseUID, email, tc, pErr)
		}
	}
	if p == nil {
		return r.degrade(firebaseUID, email, tc, pErr)
	}

	// Garage existence runs against the same deadline. The profile flag and
	// token claims already answer the common case; the existence check is the
	// source of truth that heals a stale flag.
	go func() {
		owns, err := r.repo.OwnsAnyGarage(rctx, p.ID)
		garageCh <- garageResult{owns: owns, err: err}
	}()

	ownsGarage := false
	ownsKnown := false
	select {
	case res := <-garageCh:
		if res.err != nil {
			r.logger.Warn("Garage ownership check failed; relying on profile flag and claims",
				zap.String("firebase_uid", firebaseUID), zap.Error(res.err))
		} else {
			ownsGarage = res.owns
			ownsKnown = true
		}
	case <-rctx.Done():
		r.logger.Warn("Garage ownership check timed out; relying on profile flag and claims",
			zap.String("firebase_uid", firebaseUID))
	}

	isOwner := p.IsGarageOwner || tc.IsGarageOwner || ownsGarage

	identity := ResolvedIdentity{
		ProfileID:     p.ID,
		FirebaseUID:   firebaseUID,
		Email:         p.Email,
		Role:          common.DeriveRole(isOwner),
		IsGarageOwner: isOwner,
	}

	if ownsKnown && ownsGarage && !p.IsGarageOwner {
		r.heal(p.ID, firebaseUID)
	}

	r.cache.Set(firebaseUID, identity)
	return identity
}

// bootstrapProfile creates the profile row for a first login. Best effort;
// a nil return sends the caller down the degraded path.
func (r *Resolver) bootstrapProfile(ctx context.Context, firebaseUID, email string, tc tokenClaims) *Profile {
	p := &Profile{
		FirebaseUID:   firebaseUID,
		Email:         email,
		IsGarageOwner: tc.IsGarageOwner,
	}
	if err := r.repo.Create(ctx, p); err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == http.StatusConflict {
			// Lost a race with a concurrent first login; the row exists now.
			if existing, ferr := r.repo.FindByFirebaseUID(ctx, firebaseUID); ferr == nil {
				return existing
			}
		}
		r.logger.Warn("Failed to bootstrap profile on first login",
			zap.String("firebase_uid", firebaseUID), zap.Error(err))
		return nil
	}
	r.logger.Info("Bootstrapped profile on first login", zap.String("firebase_uid", firebaseUID))
	return p
}

// heal fixes a profile whose is_garage_owner flag lags behind an actual
// garage row, and mirrors the flag into Firebase custom claims. Both writes
// are best effort and detached from the request.
func (r *Resolver) heal(profileID uuid.UUID, firebaseUID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := r.repo.SetGarageOwnerFlag(ctx, profileID, true); err != nil {
			r.logger.Warn("Corrective is_garage_owner write failed",
				zap.String("profile_id", profileID.String()), zap.Error(err))
			return
		}
		r.logger.Info("Healed stale is_garage_owner flag", zap.String("profile_id", profileID.String()))

		if r.claims != nil {
			if err := r.claims.SetCustomUserClaims(ctx, firebaseUID, map[string]interface{}{
				"is_garage_owner": true,
				"role":            common.RoleGarageOwner,
			}); err != nil {
				r.logger.Warn("Corrective claim write failed",
					zap.String("firebase_uid", firebaseUID), zap.Error(err))
			}
		}
	}()
}

// degrade answers from cache, or with the customer default when the cache is
// cold. The degraded identity has no ProfileID, so write paths that need one
// will fail authorization downstream rather than write under a guessed id.
func (r *Resolver) degrade(firebaseUID, email string, tc tokenClaims, cause error) ResolvedIdentity {
	if cached, ok := r.cache.Get(firebaseUID); ok {
		r.logger.Warn("Profile resolution degraded to cached role",
			zap.String("firebase_uid", firebaseUID), zap.Error(cause))
		return cached
	}

	r.logger.Warn("Profile resolution degraded to default role",
		zap.String("firebase_uid", firebaseUID), zap.Error(cause))
	return ResolvedIdentity{
		FirebaseUID:   firebaseUID,
		Email:         email,
		Role:          common.DeriveRole(tc.IsGarageOwner),
		IsGarageOwner: tc.IsGarageOwner,
		FromCache:     false,
	}
}

// Invalidate drops the cached role for a UID. Called on sign out before any
// remote revocation is attempted.
func (r *Resolver) Invalidate(firebaseUID string) {
	r.cache.Invalidate(firebaseUID)
}
