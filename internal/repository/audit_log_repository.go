package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// AuditLogRepository appends and queries audit records, newest first.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context) ([]domain.AuditLog, error)
	ListByActor(ctx context.Context, actorUserID string) ([]domain.AuditLog, error)
	ListByEntityType(ctx context.Context, entityType string) ([]domain.AuditLog, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (actor_user_id, action, entity_type, entity_id, details)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, timestamp`
	return r.pool.QueryRow(ctx, query,
		entry.ActorUserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Details,
	).Scan(&entry.ID, &entry.Timestamp)
}

func (r *auditLogRepository) List(ctx context.Context) ([]domain.AuditLog, error) {
	const query = `
        SELECT id, actor_user_id, action, entity_type, entity_id, timestamp, details
        FROM audit_logs ORDER BY timestamp DESC, id DESC`
	return r.list(ctx, query)
}

func (r *auditLogRepository) ListByActor(ctx context.Context, actorUserID string) ([]domain.AuditLog, error) {
	const query = `
        SELECT id, actor_user_id, action, entity_type, entity_id, timestamp, details
        FROM audit_logs WHERE actor_user_id=$1 ORDER BY timestamp DESC, id DESC`
	return r.list(ctx, query, actorUserID)
}

func (r *auditLogRepository) ListByEntityType(ctx context.Context, entityType string) ([]domain.AuditLog, error) {
	const query = `
        SELECT id, actor_user_id, action, entity_type, entity_id, timestamp, details
        FROM audit_logs WHERE entity_type=$1 ORDER BY timestamp DESC, id DESC`
	return r.list(ctx, query, entityType)
}

func (r *auditLogRepository) list(ctx context.Context, query string, args ...any) ([]domain.AuditLog, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorUserID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Timestamp,
			&entry.Details,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
