package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	ProjectID   string          `json:"project_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	Priority    domain.Priority `json:"priority"`
}

// UpdateIssueRequest payload. Omitted fields are left unchanged.
type UpdateIssueRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Severity    *domain.Severity `json:"severity"`
	Priority    *domain.Priority `json:"priority"`
}

// UpdateIssueStatusRequest payload for PUT /issues/:id/status.
type UpdateIssueStatusRequest struct {
	Status domain.IssueStatus `json:"status"`
}

// IssueResponse body.
type IssueResponse struct {
	ID          string             `json:"id"`
	ProjectID   string             `json:"project_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Severity    domain.Severity    `json:"severity"`
	Priority    domain.Priority    `json:"priority"`
	Status      domain.IssueStatus `json:"status"`
	CreatedBy   string             `json:"created_by"`
	AssignedTo  *string            `json:"assigned_to"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	ResolvedAt  *time.Time         `json:"resolved_at"`
	ClosedAt    *time.Time         `json:"closed_at"`
}

// IssueHistoryResponse is one entry of GET /issues/:id/history.
type IssueHistoryResponse struct {
	ID         string             `json:"id"`
	IssueID    string             `json:"issue_id"`
	ChangedBy  string             `json:"changed_by"`
	ChangedAt  time.Time          `json:"changed_at"`
	ChangeType domain.ChangeType  `json:"change_type"`
	FieldName  *domain.IssueField `json:"field_name"`
	OldValue   *string            `json:"old_value"`
	NewValue   *string            `json:"new_value"`
}
