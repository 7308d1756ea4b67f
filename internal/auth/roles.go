package auth

import "fmt"

type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleArtistManager Role = "artist_manager"
	RoleArtist        Role = "artist"
)

var Roles = []Role{RoleSuperAdmin, RoleArtistManager, RoleArtist}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleArtistManager, RoleArtist:
		return true
	}
	return false
}

// AutoApproved reports whether accounts of this role skip the approval workflow.
func (r Role) AutoApproved() bool {
	return r == RoleArtist
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity is the authenticated caller as loaded fresh from storage on every request.
type Identity struct {
	UserID   string
	Email    string
	Role     Role
	Approved bool
}

func (id Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}
