package domain

// CallerIdentity is the authenticated principal handed to every service call.
type CallerIdentity struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (c CallerIdentity) IsAdmin() bool {
	return c.Role == RoleAdmin
}
