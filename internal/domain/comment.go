package domain

import "time"

// Comment is a note left on an issue.
type Comment struct {
	ID        string
	IssueID   string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
