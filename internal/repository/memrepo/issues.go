package memrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

var (
	_ repository.IssueRepository        = (*IssueRepository)(nil)
	_ repository.IssueHistoryRepository = (*IssueHistoryRepository)(nil)
	_ repository.AuditLogRepository     = (*AuditLogRepository)(nil)
	_ repository.CommentRepository      = (*CommentRepository)(nil)
)

// IssueRepository is an in-memory repository.IssueRepository.
type IssueRepository struct {
	s          *Store
	FailCreate error
	FailUpdate error
}

func (r *IssueRepository) Create(_ context.Context, issue *domain.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	if issue.ID == "" {
		issue.ID = newID()
	}
	r.s.order[issue.ID] = r.s.nextSeq()
	r.s.issues[issue.ID] = *issue
	return nil
}

func (r *IssueRepository) Update(_ context.Context, issue *domain.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.FailUpdate != nil {
		return r.FailUpdate
	}
	if _, ok := r.s.issues[issue.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.issues[issue.ID] = *issue
	return nil
}

func (r *IssueRepository) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	issue, ok := r.s.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &issue, nil
}

func (r *IssueRepository) List(_ context.Context) ([]domain.Issue, error) {
	return r.where(func(domain.Issue) bool { return true }), nil
}

func (r *IssueRepository) ListByProject(_ context.Context, projectID string) ([]domain.Issue, error) {
	return r.where(func(i domain.Issue) bool { return i.ProjectID == projectID }), nil
}

func (r *IssueRepository) ListByCreator(_ context.Context, userID string) ([]domain.Issue, error) {
	return r.where(func(i domain.Issue) bool { return i.CreatedBy == userID }), nil
}

// Count returns the number of stored issues.
func (r *IssueRepository) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.issues)
}

func (r *IssueRepository) where(keep func(domain.Issue) bool) []domain.Issue {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Issue
	for _, issue := range r.s.issues {
		if keep(issue) {
			out = append(out, issue)
		}
	}
	sortByTimeDesc(out,
		func(i domain.Issue) time.Time { return i.CreatedAt },
		func(i domain.Issue) int64 { return r.s.order[i.ID] })
	return out
}

// IssueHistoryRepository is an in-memory repository.IssueHistoryRepository.
type IssueHistoryRepository struct {
	s          *Store
	FailCreate error
}

func (r *IssueHistoryRepository) Create(_ context.Context, history *domain.IssueHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	history.ID = newID()
	history.ChangedAt = r.s.now()
	r.s.history = append(r.s.history, historyRow{seq: r.s.nextSeq(), entry: *history})
	return nil
}

func (r *IssueHistoryRepository) ListByIssue(_ context.Context, issueID string) ([]domain.IssueHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []historyRow
	for _, row := range r.s.history {
		if row.entry.IssueID == issueID {
			rows = append(rows, row)
		}
	}
	sortByTimeDesc(rows,
		func(h historyRow) time.Time { return h.entry.ChangedAt },
		func(h historyRow) int64 { return h.seq })
	out := make([]domain.IssueHistory, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entry)
	}
	return out, nil
}

// Len returns the total number of history entries across all issues.
func (r *IssueHistoryRepository) Len() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.history)
}

// AuditLogRepository is an in-memory repository.AuditLogRepository.
type AuditLogRepository struct {
	s          *Store
	FailCreate error
}

func (r *AuditLogRepository) Create(_ context.Context, entry *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	entry.ID = r.s.nextSeq()
	entry.Timestamp = r.s.now()
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

func (r *AuditLogRepository) List(_ context.Context) ([]domain.AuditLog, error) {
	return r.where(func(domain.AuditLog) bool { return true }), nil
}

func (r *AuditLogRepository) ListByActor(_ context.Context, actorUserID string) ([]domain.AuditLog, error) {
	return r.where(func(e domain.AuditLog) bool { return e.ActorUserID == actorUserID }), nil
}

func (r *AuditLogRepository) ListByEntityType(_ context.Context, entityType string) ([]domain.AuditLog, error) {
	return r.where(func(e domain.AuditLog) bool { return e.EntityType == entityType }), nil
}

// Len returns the number of audit entries.
func (r *AuditLogRepository) Len() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.audit)
}

func (r *AuditLogRepository) where(keep func(domain.AuditLog) bool) []domain.AuditLog {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.AuditLog
	for _, e := range r.s.audit {
		if keep(e) {
			out = append(out, e)
		}
	}
	sortByTimeDesc(out,
		func(e domain.AuditLog) time.Time { return e.Timestamp },
		func(e domain.AuditLog) int64 { return e.ID })
	return out
}

// CommentRepository is an in-memory repository.CommentRepository.
type CommentRepository struct {
	s *Store
}

func (r *CommentRepository) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = newID()
	now := r.s.now()
	comment.CreatedAt, comment.UpdatedAt = now, now
	r.s.order[comment.ID] = r.s.nextSeq()
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r *CommentRepository) Update(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[comment.ID]; !ok {
		return pgx.ErrNoRows
	}
	comment.UpdatedAt = r.s.now()
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r *CommentRepository) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

// ListByIssue returns comments oldest first.
func (r *CommentRepository) ListByIssue(_ context.Context, issueID string) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.s.comments {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	sortByTimeDesc(out,
		func(c domain.Comment) time.Time { return c.CreatedAt },
		func(c domain.Comment) int64 { return r.s.order[c.ID] })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *CommentRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.comments, id)
	return nil
}
