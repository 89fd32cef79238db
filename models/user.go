package models

// UserRole is carried in the "role" claim of access tokens. Users and their
// credentials live in the surrounding application, this service only reads
// the claim.
type UserRole string

const (
	RoleSuper   UserRole = "super"
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleSuper, RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// CanManageMatches reports whether the role may generate schedules and
// record results.
func (r UserRole) CanManageMatches() bool {
	return r == RoleSuper || r == RoleAdmin || r == RoleManager
}
