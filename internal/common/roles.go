// File: internal/common/roles.go
package common

// Application roles. The role is derived, never stored directly: a profile is
// a garage owner iff its is_garage_owner flag is set or an owned garage exists.
const (
	RoleCustomer    = "customer"
	RoleGarageOwner = "garage_owner"
)

// DeriveRole maps the owner flag to a role string.
func DeriveRole(isGarageOwner bool) string {
	if isGarageOwner {
		return RoleGarageOwner
	}
	return RoleCustomer
}
