package goGate

// Session is the identity resolved for one request. It is never cached
// across requests.
type Session struct {
	ID    string
	Email string
	Role  Role
	Name  string
}

// RouteKind is the category the [Classifier] assigns to a path.
type RouteKind uint8

const (
	// RouteBypass paths (static assets, API proxy) are never intercepted.
	RouteBypass RouteKind = iota
	// RoutePublic paths are open to everyone.
	RoutePublic
	// RouteAuthOnly paths (login, register, forgot-password) are for anonymous visitors.
	RouteAuthOnly
	// RouteIntranet paths live under the intranet root.
	RouteIntranet
	// RouteOther is any other intercepted path. It requires a session.
	RouteOther
)

func (k RouteKind) String() string {
	switch k {
	case RouteBypass:
		return "bypass"
	case RoutePublic:
		return "public"
	case RouteAuthOnly:
		return "auth_only"
	case RouteIntranet:
		return "intranet"
	case RouteOther:
		return "other"
	default:
		return "invalid"
	}
}

// Classification is the result of classifying a path.
//
// Owner is set for [RouteIntranet] paths that fall inside a role's prefix.
// An intranet path no role owns keeps Owner == [RoleUnknown] and therefore
// matches no session.
type Classification struct {
	Kind  RouteKind
	Owner Role
}

// DecisionKind enumerates access outcomes.
type DecisionKind uint8

const (
	// DecisionBypass skips interception entirely.
	DecisionBypass DecisionKind = iota
	// DecisionAllow passes the request through.
	DecisionAllow
	// DecisionRedirectLogin sends the visitor to the login page with a callback.
	DecisionRedirectLogin
	// DecisionRedirectDashboard sends the session to its own dashboard.
	DecisionRedirectDashboard
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionBypass:
		return "bypass"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectDashboard:
		return "redirect_dashboard"
	default:
		return "invalid"
	}
}

// Decision is the access outcome for one request.
//
// Location is the redirect target path (login or dashboard). Callback is the
// originally requested path and raw query, set only for
// [DecisionRedirectLogin].
type Decision struct {
	Kind     DecisionKind
	Location string
	Callback string
}

// Redirects reports whether d requires a redirect response.
func (d Decision) Redirects() bool {
	return d.Kind == DecisionRedirectLogin || d.Kind == DecisionRedirectDashboard
}
