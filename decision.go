package goGate

// Decide applies the access table to one request. It is pure: the same
// inputs always produce the same [Decision].
//
// original is the requested path including its raw query; it becomes the
// callback of a login redirect unchanged. A session whose role is not valid
// is treated as anonymous.
func Decide(table *RoleTable, loginPath string, s *Session, class Classification, original string) Decision {
	if s != nil && !s.Role.Valid() {
		s = nil
	}

	switch class.Kind {
	case RouteBypass:
		return Decision{Kind: DecisionBypass}
	case RoutePublic:
		return Decision{Kind: DecisionAllow}
	}

	if s == nil {
		if class.Kind == RouteAuthOnly {
			return Decision{Kind: DecisionAllow}
		}
		return Decision{Kind: DecisionRedirectLogin, Location: loginPath, Callback: original}
	}

	switch class.Kind {
	case RouteAuthOnly:
		return dashboardDecision(table, s.Role)
	case RouteIntranet:
		if class.Owner == s.Role {
			return Decision{Kind: DecisionAllow}
		}
		return dashboardDecision(table, s.Role)
	default:
		return Decision{Kind: DecisionAllow}
	}
}

func dashboardDecision(table *RoleTable, r Role) Decision {
	return Decision{Kind: DecisionRedirectDashboard, Location: table.Dashboard(r)}
}
