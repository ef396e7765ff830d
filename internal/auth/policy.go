// Package auth decides who the caller is and what they may reach.
//
// There is exactly one privileged identity: the admin, recognised by email alone.
// The email comes from configuration (ADMIN_EMAIL), never from a compiled-in literal.
package auth

import "github.com/sakif/file-vault/internal/model"

// Landing paths used by the view layer.
const (
	PathAuth      = "/auth"
	PathDashboard = "/dashboard"
	PathAdmin     = "/admin"
	PathSettings  = "/settings"
)

// Policy is the authorization predicate plus the navigation it drives.
type Policy struct {
	AdminEmail string
}

func NewPolicy(adminEmail string) Policy {
	return Policy{AdminEmail: adminEmail}
}

// IsAdmin reports whether user is the admin. The comparison is exact: no case folding,
// no trimming. A nil user is never admin.
func (p Policy) IsAdmin(user *model.User) bool {
	if user == nil || p.AdminEmail == "" {
		return false
	}
	return user.Email == p.AdminEmail
}

// LandingPath is where a visitor arriving at the login view should be sent.
func (p Policy) LandingPath(user *model.User) string {
	switch {
	case user == nil:
		return PathAuth
	case p.IsAdmin(user):
		return PathAdmin
	default:
		return PathDashboard
	}
}

// NavEntry is one item of the main navigation.
type NavEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Navigation lists the entries user can see. The admin entry is present only for the admin.
func (p Policy) Navigation(user *model.User) []NavEntry {
	if user == nil {
		return []NavEntry{{Name: "Sign in", Path: PathAuth}}
	}

	entries := []NavEntry{
		{Name: "Dashboard", Path: PathDashboard},
	}
	if p.IsAdmin(user) {
		entries = append(entries,
			NavEntry{Name: "Admin", Path: PathAdmin},
			NavEntry{Name: "Settings", Path: PathSettings},
		)
	}
	return entries
}
