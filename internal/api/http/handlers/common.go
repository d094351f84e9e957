package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

func callerOf(c *fiber.Ctx) (domain.CallerIdentity, error) {
	caller, ok := auth.CallerFromContext(c)
	if !ok || caller.UserID == "" {
		return domain.CallerIdentity{}, apperrors.NewUnauthorized("authentication required")
	}
	return caller, nil
}

// pathID returns a copy of the named route parameter after checking it is a
// UUID. Params alias the request buffer, and ids end up stored in repositories.
func pathID(c *fiber.Ctx, key string) (string, error) {
	value := utils.CopyString(c.Params(key))
	if err := checkID(key, value); err != nil {
		return "", err
	}
	return value, nil
}

func checkID(key, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid %s", key), map[string]any{key: value})
	}
	return nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		CreatedBy:   project.CreatedBy,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func projectResponses(projects []domain.Project) []dto.ProjectResponse {
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return items
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:          issue.ID,
		ProjectID:   issue.ProjectID,
		Title:       issue.Title,
		Description: issue.Description,
		Severity:    issue.Severity,
		Priority:    issue.Priority,
		Status:      issue.Status,
		CreatedBy:   issue.CreatedBy,
		AssignedTo:  issue.AssignedTo,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
		ResolvedAt:  issue.ResolvedAt,
		ClosedAt:    issue.ClosedAt,
	}
}

func issueResponses(issues []domain.Issue) []dto.IssueResponse {
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return items
}

func historyResponses(entries []domain.IssueHistory) []dto.IssueHistoryResponse {
	items := make([]dto.IssueHistoryResponse, 0, len(entries))
	for _, h := range entries {
		items = append(items, dto.IssueHistoryResponse{
			ID:         h.ID,
			IssueID:    h.IssueID,
			ChangedBy:  h.ChangedBy,
			ChangedAt:  h.ChangedAt,
			ChangeType: h.ChangeType,
			FieldName:  h.FieldName,
			OldValue:   h.OldValue,
			NewValue:   h.NewValue,
		})
	}
	return items
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		IssueID:   comment.IssueID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func auditResponses(logs []domain.AuditLog) []dto.AuditLogResponse {
	items := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.AuditLogResponse{
			ID:          l.ID,
			ActorUserID: l.ActorUserID,
			Action:      l.Action,
			EntityType:  l.EntityType,
			EntityID:    l.EntityID,
			Timestamp:   l.Timestamp,
			Details:     l.Details,
		})
	}
	return items
}
