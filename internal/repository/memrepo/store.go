// Package memrepo provides in-memory implementations of the repository
// interfaces. Missing rows are reported as pgx.ErrNoRows and duplicate
// inserts as repository.ErrConflict so callers behave as with Postgres.
// Each repository exposes Fail* fields for injecting write failures.
package memrepo

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// Store holds all tables behind one lock so cross-table operations such as
// the project cascade stay consistent.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users           map[string]domain.User
	projects        map[string]domain.Project
	assignments     map[string]domain.ProjectAssignment
	assignmentOrder []string
	issues          map[string]domain.Issue
	history         []historyRow
	audit           []domain.AuditLog
	comments        map[string]domain.Comment

	seq   int64
	order map[string]int64

	Users       *UserRepository
	Projects    *ProjectRepository
	Assignments *ProjectAssignmentRepository
	Issues      *IssueRepository
	History     *IssueHistoryRepository
	Audit       *AuditLogRepository
	Comments    *CommentRepository
}

type historyRow struct {
	seq   int64
	entry domain.IssueHistory
}

// New returns an empty store.
func New() *Store {
	s := &Store{
		now:         time.Now,
		users:       make(map[string]domain.User),
		projects:    make(map[string]domain.Project),
		assignments: make(map[string]domain.ProjectAssignment),
		issues:      make(map[string]domain.Issue),
		comments:    make(map[string]domain.Comment),
		order:       make(map[string]int64),
	}
	s.Users = &UserRepository{s: s}
	s.Projects = &ProjectRepository{s: s}
	s.Assignments = &ProjectAssignmentRepository{s: s}
	s.Issues = &IssueRepository{s: s}
	s.History = &IssueHistoryRepository{s: s}
	s.Audit = &AuditLogRepository{s: s}
	s.Comments = &CommentRepository{s: s}
	return s
}

// SetClock overrides the time source used for generated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func newID() string {
	return uuid.NewString()
}

func sortByTimeDesc[T any](items []T, at func(T) time.Time, tie func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := at(items[i]), at(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return tie(items[i]) > tie(items[j])
	})
}
