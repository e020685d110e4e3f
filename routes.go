package goGate

import (
	"path"
	"strings"
)

// Classifier labels request paths. It is immutable after construction and
// safe for concurrent use.
type Classifier struct {
	table        *RoleTable
	public       []string
	auth         []string
	intranetRoot string
	bypass       []string
	extensions   map[string]struct{}
	intercept    []string
}

// NewClassifier builds a [Classifier] from cfg and the role table.
func NewClassifier(cfg RouteConfig, table *RoleTable) *Classifier {
	c := &Classifier{
		table:        table,
		public:       normalizePaths(cfg.PublicPaths),
		auth:         normalizePaths(cfg.AuthPaths),
		intranetRoot: strings.TrimSuffix(cfg.IntranetRoot, "/"),
		bypass:       normalizePaths(cfg.BypassPrefixes),
		extensions:   make(map[string]struct{}, len(cfg.BypassExtensions)),
		intercept:    normalizePaths(cfg.InterceptPrefixes),
	}
	for _, ext := range cfg.BypassExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.extensions[ext] = struct{}{}
	}
	return c
}

// Classify returns the [Classification] of p.
//
// Precedence is bypass, public, auth-only, intranet, other. Matching works on
// the cleaned path so dot segments cannot climb out of a prefix.
func (c *Classifier) Classify(p string) Classification {
	p = cleanPath(p)

	if c.isBypass(p) {
		return Classification{Kind: RouteBypass}
	}
	if len(c.intercept) > 0 && !matchAny(p, c.intercept) {
		return Classification{Kind: RouteBypass}
	}
	if c.isPublic(p) {
		return Classification{Kind: RoutePublic}
	}
	if matchAny(p, c.auth) {
		return Classification{Kind: RouteAuthOnly}
	}
	if owner, ok := c.table.Owner(p); ok {
		return Classification{Kind: RouteIntranet, Owner: owner}
	}
	if c.intranetRoot != "" && hasPathPrefix(p, c.intranetRoot) {
		return Classification{Kind: RouteIntranet, Owner: RoleUnknown}
	}
	return Classification{Kind: RouteOther}
}

func (c *Classifier) isBypass(p string) bool {
	if matchAny(p, c.bypass) {
		return true
	}
	if len(c.extensions) == 0 || c.isProtectedTree(p) {
		return false
	}
	_, ok := c.extensions[strings.ToLower(path.Ext(p))]
	return ok
}

// isProtectedTree keeps extension-based bypass from opening intranet paths.
func (c *Classifier) isProtectedTree(p string) bool {
	if c.intranetRoot != "" && hasPathPrefix(p, c.intranetRoot) {
		return true
	}
	_, owned := c.table.Owner(p)
	return owned
}

func (c *Classifier) isPublic(p string) bool {
	for _, pub := range c.public {
		if pub == "/" {
			if p == "/" {
				return true
			}
			continue
		}
		if hasPathPrefix(p, pub) {
			return true
		}
	}
	return false
}

func matchAny(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if hasPathPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

func normalizePaths(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p != "/" {
			p = strings.TrimSuffix(p, "/")
		}
		out = append(out, p)
	}
	return out
}
