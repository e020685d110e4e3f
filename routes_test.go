package goGate

import "testing"

func defaultClassifier() *Classifier {
	return NewClassifier(defaultConfig().Routes, DefaultRoleTable())
}

func TestClassify(t *testing.T) {
	c := defaultClassifier()

	cases := []struct {
		path  string
		kind  RouteKind
		owner Role
	}{
		{"/", RoutePublic, RoleUnknown},
		{"/about", RoutePublic, RoleUnknown},
		{"/about/team", RoutePublic, RoleUnknown},
		{"/aboutx", RouteOther, RoleUnknown},
		{"/contact", RoutePublic, RoleUnknown},
		{"/pricing", RoutePublic, RoleUnknown},
		{"/blog/2024/harvest", RoutePublic, RoleUnknown},

		{"/login", RouteAuthOnly, RoleUnknown},
		{"/register", RouteAuthOnly, RoleUnknown},
		{"/register/company", RouteAuthOnly, RoleUnknown},
		{"/forgot-password", RouteAuthOnly, RoleUnknown},
		{"/login-help", RouteOther, RoleUnknown},

		{"/intranet/student/offers", RouteIntranet, RoleStudent},
		{"/intranet/company/dashboard", RouteIntranet, RoleCompany},
		{"/intranet/university", RouteIntranet, RoleUniversity},
		{"/intranet/admin/users/7", RouteIntranet, RoleAdmin},
		{"/intranet", RouteIntranet, RoleUnknown},
		{"/intranet/students", RouteIntranet, RoleUnknown},

		{"/profile", RouteOther, RoleUnknown},
		{"/offers/42", RouteOther, RoleUnknown},

		{"/_next/static/chunks/main.js", RouteBypass, RoleUnknown},
		{"/api/auth/me", RouteBypass, RoleUnknown},
		{"/favicon.ico", RouteBypass, RoleUnknown},
		{"/favicon.icox", RouteOther, RoleUnknown},
		{"/api", RouteBypass, RoleUnknown},
		{"/api/", RouteBypass, RoleUnknown},
		{"/apix", RouteOther, RoleUnknown},
		{"/_next", RouteBypass, RoleUnknown},
		{"/robots.txt", RouteBypass, RoleUnknown},
		{"/robots.txt.bak", RouteOther, RoleUnknown},
		{"/images/logo.PNG", RouteBypass, RoleUnknown},
	}
	for _, tc := range cases {
		got := c.Classify(tc.path)
		if got.Kind != tc.kind || got.Owner != tc.owner {
			t.Fatalf("Classify(%q) = %s/%s, want %s/%s", tc.path, got.Kind, got.Owner, tc.kind, tc.owner)
		}
	}
}

func TestClassifyExtensionBypassStopsAtIntranet(t *testing.T) {
	c := defaultClassifier()
	for _, p := range []string{"/intranet/student/report.png", "/intranet/admin/export.js", "/intranet/x.css"} {
		if got := c.Classify(p); got.Kind != RouteIntranet {
			t.Fatalf("Classify(%q) = %s, want intranet", p, got.Kind)
		}
	}
}

func TestClassifyCleansDotSegments(t *testing.T) {
	c := defaultClassifier()
	cases := map[string]Classification{
		"/about/../intranet/admin/users": {Kind: RouteIntranet, Owner: RoleAdmin},
		"/intranet/student/../admin":     {Kind: RouteIntranet, Owner: RoleAdmin},
		"//intranet//company/":           {Kind: RouteIntranet, Owner: RoleCompany},
		"":                               {Kind: RoutePublic},
		"about":                          {Kind: RoutePublic},
	}
	for p, want := range cases {
		if got := c.Classify(p); got != want {
			t.Fatalf("Classify(%q) = %+v, want %+v", p, got, want)
		}
	}
}

func TestClassifyInterceptPrefixes(t *testing.T) {
	cfg := defaultConfig().Routes
	cfg.InterceptPrefixes = []string{"/intranet", "/login"}
	c := NewClassifier(cfg, DefaultRoleTable())

	if got := c.Classify("/profile"); got.Kind != RouteBypass {
		t.Fatalf("/profile outside intercept scope = %s", got.Kind)
	}
	if got := c.Classify("/intranet/company/x"); got.Kind != RouteIntranet {
		t.Fatalf("/intranet/company/x = %s", got.Kind)
	}
	if got := c.Classify("/login"); got.Kind != RouteAuthOnly {
		t.Fatalf("/login = %s", got.Kind)
	}
}

func TestClassifyWithoutIntranetRoot(t *testing.T) {
	cfg := defaultConfig().Routes
	cfg.IntranetRoot = ""
	c := NewClassifier(cfg, DefaultRoleTable())

	if got := c.Classify("/intranet/nobody"); got.Kind != RouteOther {
		t.Fatalf("unowned path without intranet root = %s", got.Kind)
	}
	if got := c.Classify("/intranet/student"); got.Kind != RouteIntranet || got.Owner != RoleStudent {
		t.Fatalf("role prefix = %+v", got)
	}
}
