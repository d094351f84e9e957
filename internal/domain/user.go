package domain

import "time"

// Role enumerates what a user may do in the tracker.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleTester    Role = "TESTER"
	RoleDeveloper Role = "DEVELOPER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTester, RoleDeveloper:
		return true
	}
	return false
}

// User is an account that can sign in. Role is fixed at creation.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
