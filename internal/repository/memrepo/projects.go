package memrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

var (
	_ repository.ProjectRepository           = (*ProjectRepository)(nil)
	_ repository.ProjectAssignmentRepository = (*ProjectAssignmentRepository)(nil)
)

// ProjectRepository is an in-memory repository.ProjectRepository.
type ProjectRepository struct {
	s          *Store
	FailCreate error
	FailDelete error
}

func (r *ProjectRepository) Create(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	if project.ID == "" {
		project.ID = newID()
	}
	project.CreatedAt = r.s.now()
	r.s.projects[project.ID] = *project
	return nil
}

func (r *ProjectRepository) Update(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[project.ID]; !ok {
		return pgx.ErrNoRows
	}
	now := r.s.now()
	project.UpdatedAt = &now
	r.s.projects[project.ID] = *project
	return nil
}

func (r *ProjectRepository) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (r *ProjectRepository) List(_ context.Context) ([]domain.Project, error) {
	return r.where(func(domain.Project) bool { return true }), nil
}

func (r *ProjectRepository) ListByCreator(_ context.Context, userID string) ([]domain.Project, error) {
	return r.where(func(p domain.Project) bool { return p.CreatedBy == userID }), nil
}

func (r *ProjectRepository) ListByMember(_ context.Context, userID string) ([]domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignments := r.s.assignmentsWhere(func(a domain.ProjectAssignment) bool { return a.UserID == userID })
	out := make([]domain.Project, 0, len(assignments))
	for _, a := range assignments {
		if p, ok := r.s.projects[a.ProjectID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProjectRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.FailDelete != nil {
		return r.FailDelete
	}
	if _, ok := r.s.projects[id]; !ok {
		return pgx.ErrNoRows
	}

	issueIDs := make(map[string]bool)
	for issueID, issue := range r.s.issues {
		if issue.ProjectID == id {
			issueIDs[issueID] = true
		}
	}
	for commentID, c := range r.s.comments {
		if issueIDs[c.IssueID] {
			delete(r.s.comments, commentID)
		}
	}
	kept := r.s.history[:0]
	for _, row := range r.s.history {
		if !issueIDs[row.entry.IssueID] {
			kept = append(kept, row)
		}
	}
	r.s.history = kept
	for issueID := range issueIDs {
		delete(r.s.issues, issueID)
	}
	for aID, a := range r.s.assignments {
		if a.ProjectID == id {
			delete(r.s.assignments, aID)
		}
	}
	delete(r.s.projects, id)
	return nil
}

func (r *ProjectRepository) where(keep func(domain.Project) bool) []domain.Project {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Project
	for _, p := range r.s.projects {
		if keep(p) {
			out = append(out, p)
		}
	}
	sortByTimeDesc(out,
		func(p domain.Project) time.Time { return p.CreatedAt },
		func(domain.Project) int64 { return 0 })
	return out
}

// ProjectAssignmentRepository is an in-memory repository.ProjectAssignmentRepository.
type ProjectAssignmentRepository struct {
	s          *Store
	FailExists error
}

func (r *ProjectAssignmentRepository) Create(_ context.Context, assignment *domain.ProjectAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assignments {
		if a.ProjectID == assignment.ProjectID && a.UserID == assignment.UserID {
			return repository.ErrConflict
		}
	}
	if assignment.ID == "" {
		assignment.ID = newID()
	}
	assignment.AssignedAt = r.s.now()
	r.s.assignments[assignment.ID] = *assignment
	r.s.assignmentOrder = append(r.s.assignmentOrder, assignment.ID)
	return nil
}

func (r *ProjectAssignmentRepository) Exists(_ context.Context, projectID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.FailExists != nil {
		return false, r.FailExists
	}
	for _, a := range r.s.assignments {
		if a.ProjectID == projectID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProjectAssignmentRepository) ListByUser(_ context.Context, userID string) ([]domain.ProjectAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.assignmentsWhere(func(a domain.ProjectAssignment) bool { return a.UserID == userID }), nil
}

func (r *ProjectAssignmentRepository) ListByProject(_ context.Context, projectID string) ([]domain.ProjectAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.assignmentsWhere(func(a domain.ProjectAssignment) bool { return a.ProjectID == projectID }), nil
}

// assignmentsWhere returns matching assignments in insertion order. Callers hold the lock.
func (s *Store) assignmentsWhere(keep func(domain.ProjectAssignment) bool) []domain.ProjectAssignment {
	var out []domain.ProjectAssignment
	for _, id := range s.assignmentOrder {
		a, ok := s.assignments[id]
		if ok && keep(a) {
			out = append(out, a)
		}
	}
	return out
}
