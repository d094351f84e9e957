package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ProjectAssignmentRepository stores project membership rows.
type ProjectAssignmentRepository interface {
	// Create returns ErrConflict when the pair is already assigned.
	Create(ctx context.Context, assignment *domain.ProjectAssignment) error
	Exists(ctx context.Context, projectID, userID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ProjectAssignment, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.ProjectAssignment, error)
}

type projectAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewProjectAssignmentRepository builds repository.
func NewProjectAssignmentRepository(pool *pgxpool.Pool) ProjectAssignmentRepository {
	return &projectAssignmentRepository{pool: pool}
}

func (r *projectAssignmentRepository) Create(ctx context.Context, assignment *domain.ProjectAssignment) error {
	const query = `
        INSERT INTO project_assignments (project_id, user_id)
        VALUES ($1,$2)
        RETURNING id, assigned_at`
	err := r.pool.QueryRow(ctx, query, assignment.ProjectID, assignment.UserID).
		Scan(&assignment.ID, &assignment.AssignedAt)
	return mapWriteError(err)
}

func (r *projectAssignmentRepository) Exists(ctx context.Context, projectID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM project_assignments WHERE project_id=$1 AND user_id=$2)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(&exists)
	return exists, err
}

func (r *projectAssignmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.ProjectAssignment, error) {
	const query = `
        SELECT id, project_id, user_id, assigned_at
        FROM project_assignments WHERE user_id=$1 ORDER BY assigned_at`
	return r.list(ctx, query, userID)
}

func (r *projectAssignmentRepository) ListByProject(ctx context.Context, projectID string) ([]domain.ProjectAssignment, error) {
	const query = `
        SELECT id, project_id, user_id, assigned_at
        FROM project_assignments WHERE project_id=$1 ORDER BY assigned_at`
	return r.list(ctx, query, projectID)
}

func (r *projectAssignmentRepository) list(ctx context.Context, query string, arg string) ([]domain.ProjectAssignment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProjectAssignment
	for rows.Next() {
		var a domain.ProjectAssignment
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.UserID, &a.AssignedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
