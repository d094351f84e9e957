package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

func ptr[T any](v T) *T { return &v }

func TestCreateIssue_Tester(t *testing.T) {
	h := newHarness(t)

	issue := h.createIssue()

	assert.NotEmpty(t, issue.ID)
	assert.Equal(t, domain.IssueStatusOpen, issue.Status)
	assert.Equal(t, h.alice.ID, issue.CreatedBy)
	assert.Nil(t, issue.AssignedTo)
	assert.Equal(t, issue.CreatedAt, issue.UpdatedAt)

	entries := h.history(issue.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ChangeTypeCreated, entries[0].ChangeType)
	assert.Nil(t, entries[0].OldValue)
	assert.Equal(t, "Issue created with status: OPEN", *entries[0].NewValue)

	logs, err := h.audit.ListAll(h.ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ActionIssueCreated, logs[0].Action)
	assert.Equal(t, domain.EntityIssue, logs[0].EntityType)
	assert.Equal(t, issue.ID, logs[0].EntityID)
	assert.Equal(t, "Issue created: title='Login broken', severity=HIGH, priority=CRITICAL, status=OPEN", logs[0].Details)

	require.Len(t, h.published, 1)
	assert.Equal(t, events.EventIssueCreated, h.published[0].Type)
}

func TestCreateIssue_NonTesterRolesDenied(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleDeveloper, domain.Role("GUEST")} {
		t.Run(string(role), func(t *testing.T) {
			h := newHarness(t)
			c := domain.CallerIdentity{UserID: h.bob.ID, Role: role}

			_, err := h.issues.CreateIssue(h.ctx, c, IssueCreateInput{
				Title:       "t",
				Description: "d",
				Severity:    domain.SeverityLow,
				Priority:    domain.PriorityLow,
			})
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
			assert.Equal(t, "Only Testers can create issues", err.Error())
			assert.Zero(t, h.store.Issues.Count())
			assert.Zero(t, h.store.History.Len())
			assert.Zero(t, h.store.Audit.Len())
		})
	}
}

func TestCreateIssue_Validation(t *testing.T) {
	valid := IssueCreateInput{Title: "t", Description: "d", Severity: domain.SeverityLow, Priority: domain.PriorityLow}
	tests := []struct {
		name   string
		mutate func(*IssueCreateInput)
		msg    string
	}{
		{"missing project", func(in *IssueCreateInput) { in.ProjectID = "" }, "Project ID is required"},
		{"malformed project", func(in *IssueCreateInput) { in.ProjectID = "proj-1" }, "Invalid project_id"},
		{"blank title", func(in *IssueCreateInput) { in.Title = "   " }, "Issue title cannot be null or empty"},
		{"blank description", func(in *IssueCreateInput) { in.Description = "" }, "Issue description cannot be null or empty"},
		{"missing severity", func(in *IssueCreateInput) { in.Severity = "" }, "Issue severity cannot be null"},
		{"missing priority", func(in *IssueCreateInput) { in.Priority = "" }, "Issue priority cannot be null"},
		{"unknown severity", func(in *IssueCreateInput) { in.Severity = "HUGE" }, "Invalid severity: HUGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			in := valid
			in.ProjectID = h.project.ID
			tt.mutate(&in)

			_, err := h.issues.CreateIssue(h.ctx, caller(h.alice), in)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
			assert.Equal(t, tt.msg, err.Error())
			assert.Zero(t, h.store.Issues.Count())
		})
	}
}

func TestCreateIssue_ProjectAndMembership(t *testing.T) {
	h := newHarness(t)
	in := IssueCreateInput{Title: "t", Description: "d", Severity: domain.SeverityLow, Priority: domain.PriorityLow}

	in.ProjectID = uuid.NewString()
	_, err := h.issues.CreateIssue(h.ctx, caller(h.alice), in)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Equal(t, "Project with ID "+in.ProjectID+" not found", err.Error())

	in.ProjectID = h.project.ID
	_, err = h.issues.CreateIssue(h.ctx, caller(h.mallory), in)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Equal(t, "User is not assigned to this project", err.Error())
	assert.Zero(t, h.store.Issues.Count())
}

func TestCreateIssue_SideEffectFailuresAreSwallowed(t *testing.T) {
	h := newHarness(t)
	h.store.History.FailCreate = errors.New("history down")
	h.store.Audit.FailCreate = errors.New("audit down")

	issue, err := h.issues.CreateIssue(h.ctx, caller(h.alice), IssueCreateInput{
		ProjectID: h.project.ID, Title: "t", Description: "d",
		Severity: domain.SeverityLow, Priority: domain.PriorityLow,
	})
	require.NoError(t, err)
	require.NotNil(t, issue)

	stored, err := h.issues.GetIssueByID(h.ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.Title, stored.Title)

	warnings := h.logs.FilterMessage("side effect failed").All()
	require.Len(t, warnings, 2)
	assert.Equal(t, EffectHistory, warnings[0].ContextMap()["effect"])
	assert.Equal(t, EffectAudit, warnings[1].ContextMap()["effect"])
}

func TestCreateIssue_PrimaryWriteFailure(t *testing.T) {
	h := newHarness(t)
	h.store.Issues.FailCreate = errors.New("disk full")

	_, err := h.issues.CreateIssue(h.ctx, caller(h.alice), IssueCreateInput{
		ProjectID: h.project.ID, Title: "t", Description: "d",
		Severity: domain.SeverityLow, Priority: domain.PriorityLow,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	assert.Zero(t, h.store.History.Len())
	assert.Zero(t, h.store.Audit.Len())
}

func TestUpdateIssueStatus_DeveloperClaims(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()

	updated, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.bob), issue.ID, domain.IssueStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusInProgress, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, h.bob.ID, *updated.AssignedTo)
	assert.Nil(t, updated.ResolvedAt)
	assert.Equal(t, h.clock, updated.UpdatedAt)

	entries := h.history(issue.ID)
	require.Len(t, entries, 3)
	var status, assignment *domain.IssueHistory
	for i := range entries {
		switch *fieldOf(entries[i]) {
		case domain.FieldStatus:
			status = &entries[i]
		case domain.FieldAssignedTo:
			assignment = &entries[i]
		}
	}
	require.NotNil(t, status)
	assert.Equal(t, domain.ChangeTypeStatusChange, status.ChangeType)
	assert.Equal(t, "OPEN", *status.OldValue)
	assert.Equal(t, "IN_PROGRESS", *status.NewValue)
	require.NotNil(t, assignment)
	assert.Equal(t, domain.ChangeTypeFieldUpdate, assignment.ChangeType)
	assert.Equal(t, "Unassigned", *assignment.OldValue)
	assert.Equal(t, "bob", *assignment.NewValue)

	assert.Equal(t, []string{domain.ActionIssueStatusChanged, domain.ActionIssueCreated}, h.auditActions())
	logs, _ := h.audit.ListByEntityType(h.ctx, domain.EntityIssue)
	assert.Equal(t, "Status changed: OPEN -> IN_PROGRESS", logs[0].Details)
}

func fieldOf(e domain.IssueHistory) *domain.IssueField {
	if e.FieldName == nil {
		none := domain.IssueField("")
		return &none
	}
	return e.FieldName
}

func TestUpdateIssueStatus_ReassignAndResolve(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()

	_, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.bob), issue.ID, domain.IssueStatusInProgress)
	require.NoError(t, err)
	h.tick()

	resolved, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.carol), issue.ID, domain.IssueStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, h.carol.ID, *resolved.AssignedTo)
	require.NotNil(t, resolved.ResolvedAt)
	resolvedAt := *resolved.ResolvedAt
	h.tick()

	entries := h.history(issue.ID)
	latestAssignment := entries[0]
	for _, e := range entries {
		if e.FieldName != nil && *e.FieldName == domain.FieldAssignedTo {
			latestAssignment = e
			break
		}
	}
	assert.Equal(t, "bob", *latestAssignment.OldValue)
	assert.Equal(t, "carol", *latestAssignment.NewValue)

	// resolvedAt and closedAt stay set once stamped
	closed, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.alice), issue.ID, domain.IssueStatusClosed)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, resolvedAt, *closed.ResolvedAt)
	h.tick()

	reopened, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.alice), issue.ID, domain.IssueStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusOpen, reopened.Status)
	assert.NotNil(t, reopened.ResolvedAt)
	assert.NotNil(t, reopened.ClosedAt)
	assert.Equal(t, h.carol.ID, *reopened.AssignedTo, "tester transitions keep the assignee")
}

func TestUpdateIssueStatus_DeveloperCanJumpFromClosed(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()
	_, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.alice), issue.ID, domain.IssueStatusClosed)
	require.NoError(t, err)

	updated, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.bob), issue.ID, domain.IssueStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusInProgress, updated.Status)
}

func TestUpdateIssueStatus_Denied(t *testing.T) {
	tests := []struct {
		name   string
		who    func(h *harness) domain.CallerIdentity
		target domain.IssueStatus
		code   string
		msg    string
	}{
		{"tester to in progress", func(h *harness) domain.CallerIdentity { return caller(h.alice) }, domain.IssueStatusInProgress, apperrors.CodeForbidden, "Testers can only set status to CLOSED or OPEN"},
		{"tester to resolved", func(h *harness) domain.CallerIdentity { return caller(h.alice) }, domain.IssueStatusResolved, apperrors.CodeForbidden, "Testers can only set status to CLOSED or OPEN"},
		{"developer to open", func(h *harness) domain.CallerIdentity { return caller(h.bob) }, domain.IssueStatusOpen, apperrors.CodeForbidden, "Developers can only set status to IN_PROGRESS or RESOLVED"},
		{"developer to closed", func(h *harness) domain.CallerIdentity { return caller(h.bob) }, domain.IssueStatusClosed, apperrors.CodeForbidden, "Developers can only set status to IN_PROGRESS or RESOLVED"},
		{"admin to closed", func(h *harness) domain.CallerIdentity { return caller(h.root) }, domain.IssueStatusClosed, apperrors.CodeForbidden, "Only Testers and Developers can update issue status."},
		{"admin to open", func(h *harness) domain.CallerIdentity { return caller(h.root) }, domain.IssueStatusOpen, apperrors.CodeForbidden, "Only Testers and Developers can update issue status."},
		{"non member tester", func(h *harness) domain.CallerIdentity { return caller(h.mallory) }, domain.IssueStatusClosed, apperrors.CodeForbidden, "User is not assigned to this project"},
		{"missing status", func(h *harness) domain.CallerIdentity { return caller(h.bob) }, "", apperrors.CodeValidation, "Status cannot be null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			issue := h.createIssue()
			historyBefore, auditBefore := h.store.History.Len(), h.store.Audit.Len()

			_, err := h.issues.UpdateIssueStatus(h.ctx, tt.who(h), issue.ID, tt.target)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), err.Error())
			assert.Equal(t, tt.msg, err.Error())

			stored, err := h.issues.GetIssueByID(h.ctx, issue.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.IssueStatusOpen, stored.Status)
			assert.Nil(t, stored.AssignedTo)
			assert.Equal(t, historyBefore, h.store.History.Len())
			assert.Equal(t, auditBefore, h.store.Audit.Len())
		})
	}
}

func TestUpdateIssueStatus_NotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.bob), "nope", domain.IssueStatusResolved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUpdateIssueStatus_Idempotent(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()

	_, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.bob), issue.ID, domain.IssueStatusInProgress)
	require.NoError(t, err)
	historyAfterFirst, auditAfterFirst := h.store.History.Len(), h.store.Audit.Len()

	again, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.bob), issue.ID, domain.IssueStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusInProgress, again.Status)
	assert.Equal(t, h.bob.ID, *again.AssignedTo)
	assert.Equal(t, historyAfterFirst, h.store.History.Len())
	assert.Equal(t, auditAfterFirst, h.store.Audit.Len())
}

func TestUpdateIssueStatus_SameStatusNewAssignee(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()

	_, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.bob), issue.ID, domain.IssueStatusInProgress)
	require.NoError(t, err)
	h.tick()
	statusChanges := countChange(h.history(issue.ID), domain.ChangeTypeStatusChange)
	auditBefore := h.store.Audit.Len()

	updated, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.carol), issue.ID, domain.IssueStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, h.carol.ID, *updated.AssignedTo)

	entries := h.history(issue.ID)
	assert.Equal(t, statusChanges, countChange(entries, domain.ChangeTypeStatusChange))
	assert.Equal(t, auditBefore, h.store.Audit.Len())
	assert.Equal(t, domain.FieldAssignedTo, *entries[0].FieldName)
	assert.Equal(t, "bob", *entries[0].OldValue)
	assert.Equal(t, "carol", *entries[0].NewValue)
}

func TestUpdateIssueStatus_PersistFailure(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()
	h.store.Issues.FailUpdate = errors.New("conn reset")
	before := h.store.History.Len()

	_, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.bob), issue.ID, domain.IssueStatusResolved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	assert.Equal(t, before, h.store.History.Len())
}

func TestUpdateIssueStatus_AuditFailureDoesNotFail(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()
	h.store.Audit.FailCreate = errors.New("audit down")

	updated, err := h.issues.UpdateIssueStatus(h.ctx, caller(h.bob), issue.ID, domain.IssueStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusResolved, updated.Status)
	assert.Equal(t, 2, countChange(h.history(issue.ID), domain.ChangeTypeStatusChange)+countChange(h.history(issue.ID), domain.ChangeTypeFieldUpdate))
	assert.Len(t, h.logs.FilterMessage("side effect failed").All(), 1)
}

func TestUpdateIssue_Fields(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()

	updated, err := h.issues.UpdateIssue(h.ctx, caller(h.bob), issue.ID, IssueUpdateInput{
		Title:    ptr("Login fails on Safari"),
		Severity: ptr(domain.SeverityCritical),
		Priority: ptr(domain.PriorityCritical), // unchanged
	})
	require.NoError(t, err)
	assert.Equal(t, "Login fails on Safari", updated.Title)
	assert.Equal(t, domain.SeverityCritical, updated.Severity)
	assert.Equal(t, "500 on submit", updated.Description)
	assert.Equal(t, h.clock, updated.UpdatedAt)

	entries := h.history(issue.ID)
	assert.Equal(t, 2, countChange(entries, domain.ChangeTypeFieldUpdate))

	logs, err := h.audit.ListByActor(h.ctx, h.bob.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ActionIssueUpdated, logs[0].Action)
	assert.Equal(t, "title: Login broken -> Login fails on Safari; severity: HIGH -> CRITICAL; ", logs[0].Details)
}

func TestUpdateIssue_NoOpTouchesOnly(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()
	historyBefore, auditBefore := h.store.History.Len(), h.store.Audit.Len()

	updated, err := h.issues.UpdateIssue(h.ctx, caller(h.alice), issue.ID, IssueUpdateInput{
		Title: ptr("Login broken"),
	})
	require.NoError(t, err)
	assert.Equal(t, h.clock, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.After(issue.CreatedAt))
	assert.Equal(t, historyBefore, h.store.History.Len())
	assert.Equal(t, auditBefore, h.store.Audit.Len())
}

func TestUpdateIssue_BlankDescriptionRejected(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()
	historyBefore, auditBefore := h.store.History.Len(), h.store.Audit.Len()

	_, err := h.issues.UpdateIssue(h.ctx, caller(h.alice), issue.ID, IssueUpdateInput{
		Title:       nil,
		Description: ptr("  "),
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, "Issue description cannot be empty", err.Error())

	stored, err := h.issues.GetIssueByID(h.ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, *issue, *stored)
	assert.Equal(t, historyBefore, h.store.History.Len())
	assert.Equal(t, auditBefore, h.store.Audit.Len())
}

func TestUpdateIssue_RequiresMembership(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()

	for _, u := range []domain.User{h.mallory, h.root} {
		_, err := h.issues.UpdateIssue(h.ctx, caller(u), issue.ID, IssueUpdateInput{Title: ptr("x")})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), u.Username)
	}
	stored, _ := h.issues.GetIssueByID(h.ctx, issue.ID)
	assert.Equal(t, "Login broken", stored.Title)
}

func TestReadOperations(t *testing.T) {
	h := newHarness(t)
	first := h.createIssue()
	second := h.createIssue()

	other := h.store.SeedProject("Search", h.root.ID)
	h.store.SeedAssignment(other.ID, h.alice.ID)
	h.store.SeedAssignment(other.ID, h.bob.ID)
	third, err := h.issues.CreateIssue(h.ctx, caller(h.alice), IssueCreateInput{
		ProjectID: other.ID, Title: "Slow", Description: "p99", Severity: domain.SeverityLow, Priority: domain.PriorityLow,
	})
	require.NoError(t, err)

	all, err := h.issues.GetAllIssues(h.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byProject, err := h.issues.GetIssuesByProject(h.ctx, h.project.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids(byProject))

	_, err = h.issues.GetIssuesByProject(h.ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	byUser, err := h.issues.GetIssuesByUser(h.ctx, h.alice.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 3)

	_, err = h.issues.GetIssuesByUser(h.ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	assigned, err := h.issues.GetIssuesAssignedToDeveloper(h.ctx, h.bob.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID, third.ID}, ids(assigned))

	carols, err := h.issues.GetIssuesAssignedToDeveloper(h.ctx, h.carol.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids(carols))

	_, err = h.issues.GetIssuesAssignedToDeveloper(h.ctx, h.alice.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, "User with ID "+h.alice.ID+" is not a DEVELOPER", err.Error())

	_, err = h.issues.GetIssueByID(h.ctx, "missing")
	assert.Equal(t, "Issue with ID missing not found", err.Error())

	_, err = h.issues.GetIssueHistory(h.ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func ids(issues []domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.ID)
	}
	return out
}
