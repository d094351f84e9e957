package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context) ([]domain.Issue, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Issue, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Issue, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const issueColumns = `id, project_id, title, description, severity, priority, status, created_by,
               assigned_to, created_at, updated_at, resolved_at, closed_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (project_id, title, description, severity, priority, status, created_by, assigned_to, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		issue.ProjectID,
		issue.Title,
		issue.Description,
		issue.Severity,
		issue.Priority,
		issue.Status,
		issue.CreatedBy,
		issue.AssignedTo,
		issue.CreatedAt,
		issue.UpdatedAt,
	).Scan(&issue.ID)
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET title=$1, description=$2, severity=$3, priority=$4, status=$5,
            assigned_to=$6, updated_at=$7, resolved_at=$8, closed_at=$9
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		issue.Title,
		issue.Description,
		issue.Severity,
		issue.Priority,
		issue.Status,
		issue.AssignedTo,
		issue.UpdatedAt,
		issue.ResolvedAt,
		issue.ClosedAt,
		issue.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `SELECT ` + issueColumns + ` FROM issues WHERE id=$1`
	return scanIssue(r.pool.QueryRow(ctx, query, id))
}

func (r *issueRepository) List(ctx context.Context) ([]domain.Issue, error) {
	const query = `SELECT ` + issueColumns + ` FROM issues ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *issueRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Issue, error) {
	const query = `SELECT ` + issueColumns + ` FROM issues WHERE project_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, projectID)
}

func (r *issueRepository) ListByCreator(ctx context.Context, userID string) ([]domain.Issue, error) {
	const query = `SELECT ` + issueColumns + ` FROM issues WHERE created_by=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *issueRepository) list(ctx context.Context, query string, args ...any) ([]domain.Issue, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var issue domain.Issue
	if err := row.Scan(
		&issue.ID,
		&issue.ProjectID,
		&issue.Title,
		&issue.Description,
		&issue.Severity,
		&issue.Priority,
		&issue.Status,
		&issue.CreatedBy,
		&issue.AssignedTo,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ResolvedAt,
		&issue.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}
