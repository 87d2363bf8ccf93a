// File: internal/route/router.go
package route

import (
	"strings"

	"motormate_backend/internal/common"
)

// Paths the router knows about. Everything else is public.
const (
	PathHome           = "/"
	PathAdminDashboard = "/admin/dashboard"
	PathBooking        = "/booking"
	PathAddCar         = "/add-car"
	PathMyBookings     = "/my-bookings"
	PathProfile        = "/profile"
	PathLogin          = "/login"
	PathSignup         = "/signup"
)

// SessionState is the router's whole input. It is deliberately small; the
// router never consults the database, so its decisions are instant and
// deterministic for a given state.
type SessionState struct {
	LoggedIn bool   `json:"logged_in"`
	Role     string `json:"role"`
}

// Decision says what to do with a navigation attempt.
type Decision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

var allowed = Decision{Allow: true}

func redirect(to string) Decision {
	return Decision{Allow: false, RedirectTo: to}
}

// customerActionPaths are gated on login only, not on role. A garage owner
// navigating straight to /booking is allowed in; only the home page bounces
// owners to their dashboard. Owners deep-linking into customer flows is a
// supported use, an owner can book a service at another garage.
var customerActionPaths = map[string]struct{}{
	PathBooking:    {},
	PathAddCar:     {},
	PathMyBookings: {},
	PathProfile:    {},
}

// Decide maps a session state and a target path to a routing decision.
//
//   - "/" sends logged-in garage owners to their dashboard and everyone
//     else stays.
//   - Customer action paths require a session, any role.
//   - "/admin/..." requires the garage_owner role; everyone else goes to
//     login.
//   - Unknown paths are public.
func Decide(state SessionState, path string) Decision {
	path = normalize(path)

	if path == PathHome {
		if state.LoggedIn && state.Role == common.RoleGarageOwner {
			return redirect(PathAdminDashboard)
		}
		return allowed
	}

	if _, ok := customerActionPaths[path]; ok {
		if !state.LoggedIn {
			return redirect(PathLogin)
		}
		return allowed
	}

	if strings.HasPrefix(path, "/admin") {
		if !state.LoggedIn || state.Role != common.RoleGarageOwner {
			return redirect(PathLogin)
		}
		return allowed
	}

	return allowed
}

// LandingPath is where a fresh session should land.
func LandingPath(role string) string {
	if role == common.RoleGarageOwner {
		return PathAdminDashboard
	}
	return PathHome
}

func normalize(path string) string {
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
