package auth

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"library-backend/internal/platform/apierr"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleMember   Role = "member"
)

// Staff are the roles sharing the admin/employee routes.
var Staff = []Role{RoleAdmin, RoleEmployee}

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEmployee:
		return RoleEmployee, nil
	case RoleMember:
		return RoleMember, nil
	}
	return "", apierr.ErrInvalid("invalid role specified")
}

func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleEmployee }

// DashboardPath is where a freshly logged in user lands.
func (r Role) DashboardPath() string { return "/" + string(r) + "/dashboard" }

// accountTable maps a role onto its account table. The table name is never
// built from request input.
func accountTable(r Role) (string, error) {
	switch r {
	case RoleAdmin:
		return "Admin", nil
	case RoleEmployee:
		return "Employee", nil
	case RoleMember:
		return "Member", nil
	}
	return "", apierr.ErrInvalid("invalid role specified")
}

// NormalizeUsername trims and NFKC-folds a username so full-width and
// composed forms of the same name compare equal.
func NormalizeUsername(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

// Identity is the authenticated principal carried through a request.
type Identity struct {
	Username string
	Role     Role
}
