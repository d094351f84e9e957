package domain

import "time"

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "ACTIVE"
	ProjectStatusArchived ProjectStatus = "ARCHIVED"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	return s == ProjectStatusActive || s == ProjectStatusArchived
}

// Project groups issues and the users allowed to work on them.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      ProjectStatus
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ProjectAssignment records that a user is a member of a project.
// At most one exists per (project, user) pair.
type ProjectAssignment struct {
	ID         string
	ProjectID  string
	UserID     string
	AssignedAt time.Time
}
