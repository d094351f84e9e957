package events

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated          EventType = "issue_created"
	EventIssueStatusChanged    EventType = "issue_status_changed"
	EventIssueUpdated          EventType = "issue_updated"
	EventIssueAssigned         EventType = "issue_assigned"
	EventCommentAdded          EventType = "comment_added"
	EventUserAssignedToProject EventType = "user_assigned_to_project"
)

// AllEventTypes lists every event type services publish.
func AllEventTypes() []EventType {
	return []EventType{
		EventIssueCreated,
		EventIssueStatusChanged,
		EventIssueUpdated,
		EventIssueAssigned,
		EventCommentAdded,
		EventUserAssignedToProject,
	}
}

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	ProjectID string      `json:"project_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title    string          `json:"title"`
	Severity domain.Severity `json:"severity"`
	Priority domain.Priority `json:"priority"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}

// IssueUpdatedPayload payload.
type IssueUpdatedPayload struct {
	Fields []domain.IssueField `json:"fields"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	OldAssignee *string `json:"old_assignee,omitempty"`
	NewAssignee *string `json:"new_assignee,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}

// UserAssignedPayload payload.
type UserAssignedPayload struct {
	UserID string `json:"user_id"`
}
