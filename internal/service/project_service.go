package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// ProjectService manages projects. Mutations are admin-only.
type ProjectService struct {
	projects repository.ProjectRepository
	audit    *AuditService
	effects  *SideEffects
}

// ProjectCreateInput describes project creation payload.
type ProjectCreateInput struct {
	Name        string
	Description string
}

// ProjectUpdateInput carries optional edits.
type ProjectUpdateInput struct {
	Name        *string
	Description *string
	Status      *domain.ProjectStatus
}

// NewProjectService constructs the service.
func NewProjectService(projects repository.ProjectRepository, audit *AuditService, effects *SideEffects) *ProjectService {
	if effects == nil {
		effects = NewSideEffects(nil, nil, nil)
	}
	return &ProjectService{projects: projects, audit: audit, effects: effects}
}

// CreateProject creates an ACTIVE project owned by the caller.
func (s *ProjectService) CreateProject(ctx context.Context, caller domain.CallerIdentity, input ProjectCreateInput) (*domain.Project, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := requireText(input.Name, "Project name cannot be empty"); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.ProjectStatusActive,
		CreatedBy:   caller.UserID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.effects.Settle("create_project", project.ID,
		s.effects.Run(EffectAudit, func() error {
			_, err := s.audit.Log(ctx, caller.UserID, domain.ActionProjectCreated, domain.EntityProject, project.ID,
				fmt.Sprintf("Project created: name='%s'", project.Name))
			return err
		}),
	)
	return project, nil
}

// UpdateProject applies the supplied edits.
func (s *ProjectService) UpdateProject(ctx context.Context, caller domain.CallerIdentity, projectID string, input ProjectUpdateInput) (*domain.Project, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := optionalText(input.Name, "Project name cannot be empty"); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid project status: %s", *input.Status), nil)
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapRepoError(err, "Project", projectID)
	}

	var details strings.Builder
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != project.Name {
			fmt.Fprintf(&details, "name: %s -> %s; ", project.Name, name)
			project.Name = name
		}
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description != project.Description {
			details.WriteString("description updated; ")
			project.Description = description
		}
	}
	if input.Status != nil && *input.Status != project.Status {
		fmt.Fprintf(&details, "status: %s -> %s; ", project.Status, *input.Status)
		project.Status = *input.Status
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, mapRepoError(err, "Project", projectID)
	}
	if details.Len() > 0 {
		s.effects.Settle("update_project", project.ID,
			s.effects.Run(EffectAudit, func() error {
				_, err := s.audit.Log(ctx, caller.UserID, domain.ActionProjectUpdated, domain.EntityProject, project.ID, details.String())
				return err
			}),
		)
	}
	return project, nil
}

// GetProject fetches a single project.
func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapRepoError(err, "Project", projectID)
	}
	return project, nil
}

// ListProjects returns all projects, newest first.
func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return projects, nil
}

// ListProjectsByCreator returns the projects created by userID.
func (s *ProjectService) ListProjectsByCreator(ctx context.Context, userID string) ([]domain.Project, error) {
	projects, err := s.projects.ListByCreator(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return projects, nil
}

// DeleteProject removes a project and everything that hangs off it.
func (s *ProjectService) DeleteProject(ctx context.Context, caller domain.CallerIdentity, projectID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return mapRepoError(err, "Project", projectID)
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return mapRepoError(err, "Project", projectID)
	}

	s.effects.Settle("delete_project", projectID,
		s.effects.Run(EffectAudit, func() error {
			_, err := s.audit.Log(ctx, caller.UserID, domain.ActionProjectDeleted, domain.EntityProject, projectID,
				fmt.Sprintf("Project deleted: name='%s'", project.Name))
			return err
		}),
	)
	return nil
}
