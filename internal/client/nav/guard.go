// Package nav decides which screens a session may enter and where to send
// it otherwise.
package nav

import "github.com/atinyakov/NovaBank/internal/client/session"

// Route names for the client's screens.
const (
	RouteHome      = "/"
	RouteAbout     = "/about"
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDashboard = "/dashboard"
	RouteAdmin     = "/admin"
	RouteTransfer  = "/transfer"
	RoutePayment   = "/payment"
	RouteHistory   = "/history"
)

// protected lists the routes that require an authenticated session.
var protected = map[string]bool{
	RouteDashboard: true,
	RouteAdmin:     true,
	RouteTransfer:  true,
	RoutePayment:   true,
	RouteHistory:   true,
}

// Decision is the outcome of a guard check. When Allow is false,
// RedirectTo names the route to send the session to instead.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Admit decides whether the session may enter route.
//
// Public routes are always admitted. Protected routes require an
// authenticated session; otherwise the guard redirects to the login
// screen. Inside the protected area, privileged sessions are steered to
// the admin screen and unprivileged ones away from it.
func Admit(s session.Session, route string) Decision {
	if !protected[route] {
		return Decision{Allow: true}
	}

	if s.State != session.StateAuthenticated {
		return Decision{RedirectTo: RouteLogin}
	}

	if s.Claims.IsPrivileged && route == RouteDashboard {
		return Decision{RedirectTo: RouteAdmin}
	}
	if !s.Claims.IsPrivileged && route == RouteAdmin {
		return Decision{RedirectTo: RouteDashboard}
	}
	return Decision{Allow: true}
}

// LandingRoute returns the screen a session should land on after a state
// change: the role home for authenticated sessions, login otherwise.
func LandingRoute(s session.Session) string {
	if s.State != session.StateAuthenticated {
		return RouteLogin
	}
	if s.Claims.IsPrivileged {
		return RouteAdmin
	}
	return RouteDashboard
}
