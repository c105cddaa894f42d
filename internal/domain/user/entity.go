package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can review and correct attendance
	RoleEmployee Role = "employee" // Regular employee
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// IsManager checks if the role is manager or owner
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleOwner
}
