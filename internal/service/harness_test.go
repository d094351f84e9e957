package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/policy"
	"github.com/spec-kit/issue-tracker/internal/repository/memrepo"
)

type harness struct {
	t          *testing.T
	ctx        context.Context
	store      *memrepo.Store
	logs       *observer.ObservedLogs
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	published  []events.Event

	issues      *IssueService
	projects    *ProjectService
	assignments *AssignmentService
	comments    *CommentService
	users       *UserService
	audit       *AuditService

	root    domain.User
	alice   domain.User // tester, member
	bob     domain.User // developer, member
	carol   domain.User // developer, member
	mallory domain.User // tester, not a member
	project domain.Project
	clock   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	h := &harness{
		t:          t,
		ctx:        context.Background(),
		store:      memrepo.New(),
		logs:       logs,
		metrics:    observability.NewMetrics(),
		dispatcher: events.NewInMemoryDispatcher(),
		clock:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	h.store.SetClock(h.now)
	for _, et := range events.AllEventTypes() {
		h.dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			h.published = append(h.published, e)
			return nil
		})
	}

	effects := NewSideEffects(logger, h.metrics, h.dispatcher)
	membership := policy.NewMembership(h.store.Assignments)
	h.audit = NewAuditService(h.store.Audit)
	h.issues = NewIssueService(IssueDependencies{
		IssueRepo:      h.store.Issues,
		ProjectRepo:    h.store.Projects,
		UserRepo:       h.store.Users,
		AssignmentRepo: h.store.Assignments,
		Membership:     membership,
		History:        NewHistoryRecorder(h.store.History),
		Audit:          h.audit,
		Effects:        effects,
		Metrics:        h.metrics,
		Logger:         logger,
		Clock:          h.now,
	})
	h.projects = NewProjectService(h.store.Projects, h.audit, effects)
	h.assignments = NewAssignmentService(AssignmentDependencies{
		ProjectRepo:    h.store.Projects,
		UserRepo:       h.store.Users,
		AssignmentRepo: h.store.Assignments,
		Audit:          h.audit,
		Effects:        effects,
	})
	h.comments = NewCommentService(CommentDependencies{
		CommentRepo: h.store.Comments,
		IssueRepo:   h.store.Issues,
		Membership:  membership,
		Audit:       h.audit,
		Effects:     effects,
	})
	h.users = NewUserService(h.store.Users, h.store.Projects, 4)

	h.root = h.store.SeedUser("root", domain.RoleAdmin)
	h.alice = h.store.SeedUser("alice", domain.RoleTester)
	h.bob = h.store.SeedUser("bob", domain.RoleDeveloper)
	h.carol = h.store.SeedUser("carol", domain.RoleDeveloper)
	h.mallory = h.store.SeedUser("mallory", domain.RoleTester)
	h.project = h.store.SeedProject("Payments", h.root.ID)
	h.store.SeedAssignment(h.project.ID, h.alice.ID)
	h.store.SeedAssignment(h.project.ID, h.bob.ID)
	h.store.SeedAssignment(h.project.ID, h.carol.ID)
	return h
}

func (h *harness) now() time.Time {
	return h.clock
}

func (h *harness) tick() {
	h.clock = h.clock.Add(time.Minute)
}

func caller(u domain.User) domain.CallerIdentity {
	return domain.CallerIdentity{UserID: u.ID, Role: u.Role}
}

func (h *harness) createIssue() *domain.Issue {
	h.t.Helper()
	issue, err := h.issues.CreateIssue(h.ctx, caller(h.alice), IssueCreateInput{
		ProjectID:   h.project.ID,
		Title:       "Login broken",
		Description: "500 on submit",
		Severity:    domain.SeverityHigh,
		Priority:    domain.PriorityCritical,
	})
	require.NoError(h.t, err)
	h.tick()
	return issue
}

func (h *harness) history(issueID string) []domain.IssueHistory {
	h.t.Helper()
	entries, err := h.issues.GetIssueHistory(h.ctx, issueID)
	require.NoError(h.t, err)
	return entries
}

func (h *harness) auditActions() []string {
	h.t.Helper()
	logs, err := h.audit.ListAll(h.ctx)
	require.NoError(h.t, err)
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func countChange(entries []domain.IssueHistory, ct domain.ChangeType) int {
	n := 0
	for _, e := range entries {
		if e.ChangeType == ct {
			n++
		}
	}
	return n
}
