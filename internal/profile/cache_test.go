package profile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"motormate_backend/internal/common"
)

func TestRoleCache_SetAndGet(t *testing.T) {
	c := newRoleCache(30 * time.Minute)
	id := uuid.New()
	c.Set("uid-1", ResolvedIdentity{ProfileID: id, FirebaseUID: "uid-1", Role: common.RoleGarageOwner})

	got, ok := c.Get("uid-1")
	assert.True(t, ok)
	assert.Equal(t, id, got.ProfileID)
	assert.Equal(t, common.RoleGarageOwner, got.Role)
	assert.True(t, got.FromCache)
}

func TestRoleCache_MissForUnknownUID(t *testing.T) {
	c := newRoleCache(30 * time.Minute)
	_, ok := c.Get("nobody")
	assert.False(t, ok)
}

func TestRoleCache_ExpiresAfterTTL(t *testing.T) {
	c := newRoleCache(30 * time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("uid-1", ResolvedIdentity{FirebaseUID: "uid-1", Role: common.RoleCustomer})

	current = current.Add(29 * time.Minute)
	_, ok := c.Get("uid-1")
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = c.Get("uid-1")
	assert.False(t, ok)
}

func TestRoleCache_Invalidate(t *testing.T) {
	c := newRoleCache(30 * time.Minute)
	c.Set("uid-1", ResolvedIdentity{FirebaseUID: "uid-1", Role: common.RoleGarageOwner})

	c.Invalidate("uid-1")

	_, ok := c.Get("uid-1")
	assert.False(t, ok)
}
