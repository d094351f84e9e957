package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// IssuesHandler exposes the issue lifecycle.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// CreateIssue POST /issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req dto.CreateIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	issue, err := h.service.CreateIssue(c.UserContext(), caller, service.IssueCreateInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueResponse(issue)})
}

// ListIssues GET /issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	issues, err := h.service.GetAllIssues(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponses(issues)})
}

// GetIssue GET /issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	issue, err := h.service.GetIssueByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// UpdateIssue PUT /issues/:id.
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	issue, err := h.service.UpdateIssue(c.UserContext(), caller, id, service.IssueUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// UpdateIssueStatus PUT /issues/:id/status.
func (h *IssuesHandler) UpdateIssueStatus(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateIssueStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	issue, err := h.service.UpdateIssueStatus(c.UserContext(), caller, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// GetIssueHistory GET /issues/:id/history.
func (h *IssuesHandler) GetIssueHistory(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.service.GetIssueHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

// ListByProject GET /issues/project/:projectId.
func (h *IssuesHandler) ListByProject(c *fiber.Ctx) error {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}
	issues, err := h.service.GetIssuesByProject(c.UserContext(), projectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponses(issues)})
}

// ListByUser GET /issues/user/:userId.
func (h *IssuesHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	issues, err := h.service.GetIssuesByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponses(issues)})
}

// ListAssigned GET /issues/assigned/:developerId. Callers other than ADMIN
// may only look at their own work queue.
func (h *IssuesHandler) ListAssigned(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	developerID, err := pathID(c, "developerId")
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && caller.UserID != developerID {
		return apperrors.NewForbidden("You can only view your own assigned issues")
	}
	issues, err := h.service.GetIssuesAssignedToDeveloper(c.UserContext(), developerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponses(issues)})
}
