package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// UserService exposes account management and lookups.
type UserService struct {
	users      repository.UserRepository
	projects   repository.ProjectRepository
	bcryptCost int
}

// UserCreateInput describes a new account.
type UserCreateInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, projects repository.ProjectRepository, bcryptCost int) *UserService {
	return &UserService{users: users, projects: projects, bcryptCost: bcryptCost}
}

// CreateUser registers an account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	if err := requireText(input.Username, "Username is required"); err != nil {
		return nil, err
	}
	if err := requireText(input.Password, "Password is required"); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid role: %s", input.Role), nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("Username is already taken", map[string]any{"username": user.Username})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// GetUser fetches a single account.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "User", id)
	}
	return user, nil
}

// ListUserProjects returns the projects a user is a member of.
func (s *UserService) ListUserProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	projects, err := s.projects.ListByMember(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return projects, nil
}

// ListProjectUsers returns the members of a project.
func (s *UserService) ListProjectUsers(ctx context.Context, projectID string) ([]domain.User, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, mapRepoError(err, "Project", projectID)
	}
	users, err := s.users.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}
