package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const msgAlreadyAssigned = "User is already assigned to this project"

// AssignmentService manages project membership.
type AssignmentService struct {
	projects    repository.ProjectRepository
	users       repository.UserRepository
	assignments repository.ProjectAssignmentRepository
	audit       *AuditService
	effects     *SideEffects
}

// AssignmentDependencies bundles collaborators for assignment service.
type AssignmentDependencies struct {
	ProjectRepo    repository.ProjectRepository
	UserRepo       repository.UserRepository
	AssignmentRepo repository.ProjectAssignmentRepository
	Audit          *AuditService
	Effects        *SideEffects
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	effects := deps.Effects
	if effects == nil {
		effects = NewSideEffects(nil, nil, nil)
	}
	return &AssignmentService{
		projects:    deps.ProjectRepo,
		users:       deps.UserRepo,
		assignments: deps.AssignmentRepo,
		audit:       deps.Audit,
		effects:     effects,
	}
}

// AddUserToProject makes a tester or developer a member of a project.
// A pair can be assigned only once.
func (s *AssignmentService) AddUserToProject(ctx context.Context, caller domain.CallerIdentity, projectID, userID string) (*domain.ProjectAssignment, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapRepoError(err, "Project", projectID)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "User", userID)
	}
	if user.Role == domain.RoleAdmin {
		return nil, apperrors.NewValidationError("Admin users cannot be assigned to projects", nil)
	}

	exists, err := s.assignments.Exists(ctx, projectID, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if exists {
		return nil, conflictAlreadyAssigned(projectID, userID)
	}

	assignment := &domain.ProjectAssignment{ProjectID: projectID, UserID: userID}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflictAlreadyAssigned(projectID, userID)
		}
		return nil, apperrors.NewInternalError(err)
	}

	details := fmt.Sprintf("User '%s' (%s) assigned to project '%s'", user.Username, user.Role, project.Name)
	s.effects.Settle("add_user_to_project", assignment.ID,
		s.effects.Run(EffectAudit, func() error {
			_, err := s.audit.Log(ctx, caller.UserID, domain.ActionUserAssignedToProject, domain.EntityProjectAssignment, assignment.ID, details)
			return err
		}),
		s.effects.Publish(ctx, events.Event{
			Type:      events.EventUserAssignedToProject,
			EntityID:  assignment.ID,
			ProjectID: projectID,
			Actor:     actorOf(caller),
			Payload:   events.UserAssignedPayload{UserID: userID},
		}),
	)
	return assignment, nil
}

func conflictAlreadyAssigned(projectID, userID string) error {
	return apperrors.NewConflict(msgAlreadyAssigned, map[string]any{"project_id": projectID, "user_id": userID})
}
