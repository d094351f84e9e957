package domain

import "time"

// Audit entity types.
const (
	EntityIssue             = "ISSUE"
	EntityProject           = "PROJECT"
	EntityProjectAssignment = "PROJECT_ASSIGNMENT"
	EntityComment           = "COMMENT"
)

// Audit actions.
const (
	ActionIssueCreated          = "ISSUE_CREATED"
	ActionIssueStatusChanged    = "ISSUE_STATUS_CHANGED"
	ActionIssueUpdated          = "ISSUE_UPDATED"
	ActionProjectCreated        = "PROJECT_CREATED"
	ActionProjectUpdated        = "PROJECT_UPDATED"
	ActionProjectDeleted        = "PROJECT_DELETED"
	ActionUserAssignedToProject = "USER_ASSIGNED_TO_PROJECT"
	ActionCommentCreated        = "COMMENT_CREATED"
	ActionCommentUpdated        = "COMMENT_UPDATED"
	ActionCommentDeleted        = "COMMENT_DELETED"
)

// AuditLog is an immutable system-wide record of who did what to which entity.
type AuditLog struct {
	ID          int64
	ActorUserID string
	Action      string
	EntityType  string
	EntityID    string
	Timestamp   time.Time
	Details     string
}
