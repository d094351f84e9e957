package memrepo

import (
	"context"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// SeedUser inserts a user with the given username and role.
func (s *Store) SeedUser(username string, role domain.Role) domain.User {
	u := domain.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role}
	if err := s.Users.Create(context.Background(), &u); err != nil {
		panic(err)
	}
	return u
}

// SeedProject inserts an active project owned by createdBy.
func (s *Store) SeedProject(name, createdBy string) domain.Project {
	p := domain.Project{Name: name, Status: domain.ProjectStatusActive, CreatedBy: createdBy}
	if err := s.Projects.Create(context.Background(), &p); err != nil {
		panic(err)
	}
	return p
}

// SeedAssignment makes userID a member of projectID.
func (s *Store) SeedAssignment(projectID, userID string) {
	a := domain.ProjectAssignment{ProjectID: projectID, UserID: userID}
	if err := s.Assignments.Create(context.Background(), &a); err != nil {
		panic(err)
	}
}
