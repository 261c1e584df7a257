package model

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDispatcher Role = "dispatcher"
	RoleAccountant Role = "accountant"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDispatcher, RoleAccountant:
		return true
	default:
		return false
	}
}

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID int64
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsDispatcher() bool {
	return p.Role == RoleDispatcher
}

func (p Principal) IsAccountant() bool {
	return p.Role == RoleAccountant
}

// IsElevated covers roles allowed to operate trips, sessions, acts and payroll.
func (p Principal) IsElevated() bool {
	return p.IsAdmin() || p.IsDispatcher()
}

func (p Principal) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
