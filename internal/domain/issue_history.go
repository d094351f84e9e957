package domain

import "time"

// ChangeType captures what kind of change a history entry describes.
type ChangeType string

const (
	ChangeTypeCreated      ChangeType = "CREATED"
	ChangeTypeStatusChange ChangeType = "STATUS_CHANGE"
	ChangeTypeFieldUpdate  ChangeType = "FIELD_UPDATE"
)

// IssueField names the issue attribute a history entry refers to.
type IssueField string

const (
	FieldTitle       IssueField = "TITLE"
	FieldDescription IssueField = "DESCRIPTION"
	FieldStatus      IssueField = "STATUS"
	FieldSeverity    IssueField = "SEVERITY"
	FieldPriority    IssueField = "PRIORITY"
	FieldAssignedTo  IssueField = "ASSIGNED_TO"
)

// IssueHistory is an immutable per-issue change entry.
type IssueHistory struct {
	ID         string
	IssueID    string
	ChangedBy  string
	ChangedAt  time.Time
	ChangeType ChangeType
	FieldName  *IssueField
	OldValue   *string
	NewValue   *string
}
