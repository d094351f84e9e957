package service

import (
	"context"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

// HistoryRecorder appends per-issue change entries. Storage errors are
// returned; callers decide whether they are fatal.
type HistoryRecorder struct {
	repo repository.IssueHistoryRepository
}

// NewHistoryRecorder constructs the recorder.
func NewHistoryRecorder(repo repository.IssueHistoryRepository) *HistoryRecorder {
	return &HistoryRecorder{repo: repo}
}

// RecordCreated logs the creation of an issue in its initial status.
func (h *HistoryRecorder) RecordCreated(ctx context.Context, issueID, actorID string, status domain.IssueStatus) (*domain.IssueHistory, error) {
	newValue := "Issue created with status: " + string(status)
	return h.append(ctx, &domain.IssueHistory{
		IssueID:    issueID,
		ChangedBy:  actorID,
		ChangeType: domain.ChangeTypeCreated,
		NewValue:   &newValue,
	})
}

// RecordStatusChange logs a status transition.
func (h *HistoryRecorder) RecordStatusChange(ctx context.Context, issueID, actorID string, from, to domain.IssueStatus) (*domain.IssueHistory, error) {
	return h.RecordFieldChange(ctx, issueID, actorID, domain.ChangeTypeStatusChange, domain.FieldStatus, string(from), string(to))
}

// RecordFieldChange logs one field moving from oldValue to newValue.
func (h *HistoryRecorder) RecordFieldChange(ctx context.Context, issueID, actorID string, changeType domain.ChangeType, field domain.IssueField, oldValue, newValue string) (*domain.IssueHistory, error) {
	return h.append(ctx, &domain.IssueHistory{
		IssueID:    issueID,
		ChangedBy:  actorID,
		ChangeType: changeType,
		FieldName:  &field,
		OldValue:   &oldValue,
		NewValue:   &newValue,
	})
}

// ListForIssue returns the issue's entries newest first.
func (h *HistoryRecorder) ListForIssue(ctx context.Context, issueID string) ([]domain.IssueHistory, error) {
	return h.repo.ListByIssue(ctx, issueID)
}

func (h *HistoryRecorder) append(ctx context.Context, entry *domain.IssueHistory) (*domain.IssueHistory, error) {
	if err := h.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
