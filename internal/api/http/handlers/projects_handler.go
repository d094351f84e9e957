package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
)

// ProjectsHandler manages projects and their membership.
type ProjectsHandler struct {
	projects    *service.ProjectService
	assignments *service.AssignmentService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService, assignmentService *service.AssignmentService) *ProjectsHandler {
	return &ProjectsHandler{projects: projectService, assignments: assignmentService}
}

// CreateProject POST /projects.
func (h *ProjectsHandler) CreateProject(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req dto.CreateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project, err := h.projects.CreateProject(c.UserContext(), caller, service.ProjectCreateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// ListProjects GET /projects, optionally filtered by ?created_by=.
func (h *ProjectsHandler) ListProjects(c *fiber.Ctx) error {
	var (
		list []domain.Project
		err  error
	)
	if creator := c.Query("created_by"); creator != "" {
		if err := checkID("created_by", creator); err != nil {
			return err
		}
		list, err = h.projects.ListProjectsByCreator(c.UserContext(), creator)
	} else {
		list, err = h.projects.ListProjects(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponses(list)})
}

// GetProject GET /projects/:id.
func (h *ProjectsHandler) GetProject(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	project, err := h.projects.GetProject(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// UpdateProject PUT /projects/:id.
func (h *ProjectsHandler) UpdateProject(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project, err := h.projects.UpdateProject(c.UserContext(), caller, id, service.ProjectUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// DeleteProject DELETE /projects/:id.
func (h *ProjectsHandler) DeleteProject(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.projects.DeleteProject(c.UserContext(), caller, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AssignUser POST /projects/:id/assign/:userId.
func (h *ProjectsHandler) AssignUser(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	assignment, err := h.assignments.AddUserToProject(c.UserContext(), caller, projectID, userID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AssignmentResponse{
		ID:         assignment.ID,
		ProjectID:  assignment.ProjectID,
		UserID:     assignment.UserID,
		AssignedAt: assignment.AssignedAt,
	}})
}
