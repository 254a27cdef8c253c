package user

type Role string

const (
	RoleMember   Role = "member"
	RoleStaff    Role = "staff"
	RoleCoreTeam Role = "core_team"
	RoleAdmin    Role = "admin"
)

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsStaff reports whether the principal may edit live events.
func (p Principal) IsStaff() bool {
	switch p.Role {
	case RoleStaff, RoleCoreTeam, RoleAdmin:
		return true
	default:
		return false
	}
}
