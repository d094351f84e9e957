package dto

import "time"

// CommentRequest payload for creating or editing a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse body.
type CommentResponse struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditLogResponse body.
type AuditLogResponse struct {
	ID          int64     `json:"id"`
	ActorUserID string    `json:"actor_user_id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Timestamp   time.Time `json:"timestamp"`
	Details     string    `json:"details"`
}
