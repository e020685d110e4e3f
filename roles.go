package goGate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Role is the closed set of account kinds that own an intranet subtree.
//
// The zero value [RoleUnknown] is never a valid session role; resolvers that
// receive a role outside the enumeration report [ErrUnknownRole] instead.
type Role uint8

const (
	// RoleUnknown is the zero Role. It owns no prefix.
	RoleUnknown Role = iota
	// RoleStudent is a student account.
	RoleStudent
	// RoleCompany is a company (recruiter) account.
	RoleCompany
	// RoleUniversity is a university account.
	RoleUniversity
	// RoleAdmin is a platform administrator.
	RoleAdmin
	roleCount
)

// AllRoles lists every valid role in table order.
var AllRoles = [...]Role{RoleStudent, RoleCompany, RoleUniversity, RoleAdmin}

var roleNames = [roleCount]string{
	RoleUnknown:    "unknown",
	RoleStudent:    "student",
	RoleCompany:    "company",
	RoleUniversity: "university",
	RoleAdmin:      "admin",
}

// String returns the lowercase role name.
func (r Role) String() string {
	if r >= roleCount {
		return roleNames[RoleUnknown]
	}
	return roleNames[r]
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r > RoleUnknown && r < roleCount
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrUnknownRole
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using [ParseRole].
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole maps a wire role to a [Role].
//
// Both the lowercase names and the backend's uppercase spellings are accepted
// (STUDENT, COMPANY, UNIVERSITY, SUPER_ADMIN). Any other value returns
// [ErrUnknownRole].
func ParseRole(s string) (Role, error) {
	switch strings.TrimSpace(s) {
	case "student", "STUDENT":
		return RoleStudent, nil
	case "company", "COMPANY":
		return RoleCompany, nil
	case "university", "UNIVERSITY":
		return RoleUniversity, nil
	case "admin", "ADMIN", "SUPER_ADMIN", "super_admin":
		return RoleAdmin, nil
	default:
		return RoleUnknown, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

const dashboardSuffix = "/dashboard"

// RoleTable is the immutable role -> intranet prefix mapping.
//
// A dashboard path is always derived from the same entry as the prefix, so a
// role's dashboard is classified as that role's own intranet subtree and the
// dashboard redirect can never loop.
type RoleTable struct {
	prefixes [roleCount]string
}

// DefaultRoleTable returns the canonical AgriNews Talent mapping.
func DefaultRoleTable() *RoleTable {
	t, err := NewRoleTable(map[Role]string{
		RoleStudent:    "/intranet/student",
		RoleCompany:    "/intranet/company",
		RoleUniversity: "/intranet/university",
		RoleAdmin:      "/intranet/admin",
	})
	if err != nil {
		panic("goGate: default role table invalid: " + err.Error())
	}
	return t
}

// NewRoleTable validates prefixes and returns a [RoleTable].
//
// The mapping must be total over [AllRoles], injective, and prefix-free: no
// prefix may equal or contain another on a path segment boundary.
func NewRoleTable(prefixes map[Role]string) (*RoleTable, error) {
	t := &RoleTable{}
	for role, prefix := range prefixes {
		if !role.Valid() {
			return nil, fmt.Errorf("%w: role %d", ErrRoleTableInvalid, role)
		}
		if err := checkPrefix(prefix); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRoleTableInvalid, role, err)
		}
		t.prefixes[role] = prefix
	}

	for _, role := range AllRoles {
		if t.prefixes[role] == "" {
			return nil, fmt.Errorf("%w: missing prefix for %s", ErrRoleTableInvalid, role)
		}
	}

	for _, a := range AllRoles {
		for _, b := range AllRoles {
			if a == b {
				continue
			}
			if hasPathPrefix(t.prefixes[a], t.prefixes[b]) {
				return nil, fmt.Errorf("%w: %s prefix %q overlaps %s prefix %q",
					ErrRoleTableInvalid, a, t.prefixes[a], b, t.prefixes[b])
			}
		}
	}

	return t, nil
}

func checkPrefix(prefix string) error {
	switch {
	case prefix == "":
		return errors.New("empty prefix")
	case !strings.HasPrefix(prefix, "/"):
		return errors.New("prefix must be absolute")
	case prefix == "/":
		return errors.New("prefix must not be the site root")
	case strings.HasSuffix(prefix, "/"):
		return errors.New("prefix must not end with a slash")
	case strings.ContainsAny(prefix, "?#*"):
		return errors.New("prefix must be a literal path")
	}
	return nil
}

// Prefix returns the canonical intranet prefix of r, or "" for an invalid role.
func (t *RoleTable) Prefix(r Role) string {
	if t == nil || !r.Valid() {
		return ""
	}
	return t.prefixes[r]
}

// Dashboard returns the dashboard path of r, or "" for an invalid role.
func (t *RoleTable) Dashboard(r Role) string {
	p := t.Prefix(r)
	if p == "" {
		return ""
	}
	return p + dashboardSuffix
}

// Owner returns the role whose prefix contains path.
func (t *RoleTable) Owner(path string) (Role, bool) {
	if t == nil {
		return RoleUnknown, false
	}
	for _, r := range AllRoles {
		if hasPathPrefix(path, t.prefixes[r]) {
			return r, true
		}
	}
	return RoleUnknown, false
}

// Roles returns the roles in the table sorted by prefix.
func (t *RoleTable) Roles() []Role {
	out := make([]Role, 0, len(AllRoles))
	out = append(out, AllRoles[:]...)
	sort.Slice(out, func(i, j int) bool {
		return t.Prefix(out[i]) < t.Prefix(out[j])
	})
	return out
}

// hasPathPrefix reports whether path equals prefix or lies beneath it on a
// segment boundary, so "/intranet/student" does not own "/intranet/students".
func hasPathPrefix(path, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return prefix[len(prefix)-1] == '/' || path[len(prefix)] == '/'
}
