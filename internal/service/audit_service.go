package service

import (
	"context"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// AuditService writes and reads the system-wide audit trail.
type AuditService struct {
	repo repository.AuditLogRepository
}

// NewAuditService constructs the service.
func NewAuditService(repo repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log appends an audit record. The timestamp is assigned by storage.
func (a *AuditService) Log(ctx context.Context, actorID, action, entityType, entityID, details string) (*domain.AuditLog, error) {
	entry := &domain.AuditLog{
		ActorUserID: actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Details:     details,
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListAll returns every record, newest first.
func (a *AuditService) ListAll(ctx context.Context) ([]domain.AuditLog, error) {
	logs, err := a.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return logs, nil
}

// ListByActor returns records written by actorID, newest first.
func (a *AuditService) ListByActor(ctx context.Context, actorID string) ([]domain.AuditLog, error) {
	logs, err := a.repo.ListByActor(ctx, actorID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return logs, nil
}

// ListByEntityType returns records for entityType, newest first.
func (a *AuditService) ListByEntityType(ctx context.Context, entityType string) ([]domain.AuditLog, error) {
	logs, err := a.repo.ListByEntityType(ctx, entityType)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return logs, nil
}
