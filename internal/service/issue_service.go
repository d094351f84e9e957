package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/policy"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const unassignedLabel = "Unassigned"

// IssueService runs the issue lifecycle: authorization, mutation, then
// best-effort history, audit and event side effects.
type IssueService struct {
	issues     repository.IssueRepository
	projects   repository.ProjectRepository
	users      repository.UserRepository
	assigns    repository.ProjectAssignmentRepository
	membership *policy.Membership
	history    *HistoryRecorder
	audit      *AuditService
	effects    *SideEffects
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo      repository.IssueRepository
	ProjectRepo    repository.ProjectRepository
	UserRepo       repository.UserRepository
	AssignmentRepo repository.ProjectAssignmentRepository
	Membership     *policy.Membership
	History        *HistoryRecorder
	Audit          *AuditService
	Effects        *SideEffects
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Clock          func() time.Time
}

// IssueCreateInput describes issue creation payload.
type IssueCreateInput struct {
	ProjectID   string
	Title       string
	Description string
	Severity    domain.Severity
	Priority    domain.Priority
}

// IssueUpdateInput carries optional field edits. nil leaves a field unchanged.
type IssueUpdateInput struct {
	Title       *string
	Description *string
	Severity    *domain.Severity
	Priority    *domain.Priority
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	svc := &IssueService{
		issues:     deps.IssueRepo,
		projects:   deps.ProjectRepo,
		users:      deps.UserRepo,
		assigns:    deps.AssignmentRepo,
		membership: deps.Membership,
		history:    deps.History,
		audit:      deps.Audit,
		effects:    deps.Effects,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.effects == nil {
		svc.effects = NewSideEffects(svc.logger, deps.Metrics, nil)
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// CreateIssue reports a new issue in OPEN status. Only testers assigned to
// the project may do so.
func (s *IssueService) CreateIssue(ctx context.Context, caller domain.CallerIdentity, input IssueCreateInput) (*domain.Issue, error) {
	if d := policy.CanCreateIssue(caller.Role); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	if err := requireText(input.ProjectID, "Project ID is required"); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(input.ProjectID); err != nil {
		return nil, apperrors.NewValidationError("Invalid project_id", map[string]any{"project_id": input.ProjectID})
	}
	if err := requireText(input.Title, "Issue title cannot be null or empty"); err != nil {
		return nil, err
	}
	if err := requireText(input.Description, "Issue description cannot be null or empty"); err != nil {
		return nil, err
	}
	if err := validateSeverity(input.Severity, "Issue severity cannot be null"); err != nil {
		return nil, err
	}
	if err := validatePriority(input.Priority, "Issue priority cannot be null"); err != nil {
		return nil, err
	}
	if _, err := s.projects.GetByID(ctx, input.ProjectID); err != nil {
		return nil, mapRepoError(err, "Project", input.ProjectID)
	}
	if err := s.membership.RequireMember(ctx, input.ProjectID, caller); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	issue := &domain.Issue{
		ProjectID:   input.ProjectID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Severity:    input.Severity,
		Priority:    input.Priority,
		Status:      domain.IssueStatusOpen,
		CreatedBy:   caller.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, mapRepoError(err, "Issue", "")
	}

	details := fmt.Sprintf("Issue created: title='%s', severity=%s, priority=%s, status=%s",
		issue.Title, issue.Severity, issue.Priority, issue.Status)
	s.effects.Settle("create_issue", issue.ID,
		s.effects.Run(EffectHistory, func() error {
			_, err := s.history.RecordCreated(ctx, issue.ID, caller.UserID, issue.Status)
			return err
		}),
		s.effects.Run(EffectAudit, func() error {
			_, err := s.audit.Log(ctx, caller.UserID, domain.ActionIssueCreated, domain.EntityIssue, issue.ID, details)
			return err
		}),
		s.effects.Publish(ctx, events.Event{
			Type:      events.EventIssueCreated,
			EntityID:  issue.ID,
			ProjectID: issue.ProjectID,
			Actor:     actorOf(caller),
			Payload: events.IssueCreatedPayload{
				Title:    issue.Title,
				Severity: issue.Severity,
				Priority: issue.Priority,
			},
		}),
	)
	return issue, nil
}

// UpdateIssueStatus moves an issue to newStatus. Developers moving an issue
// to IN_PROGRESS or RESOLVED become its assignee.
func (s *IssueService) UpdateIssueStatus(ctx context.Context, caller domain.CallerIdentity, issueID string, newStatus domain.IssueStatus) (*domain.Issue, error) {
	if err := validateStatus(newStatus); err != nil {
		return nil, err
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err, "Issue", issueID)
	}
	// Admins can never be project members, so reject their role before membership.
	if d := policy.CanChangeStatus(caller.Role); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}
	if err := s.membership.RequireMember(ctx, issue.ProjectID, caller); err != nil {
		return nil, err
	}
	if d := policy.CanSetStatus(caller.Role, newStatus); !d.Allowed {
		return nil, apperrors.NewForbidden(d.Reason)
	}

	oldStatus := issue.Status
	oldAssignee := issue.AssignedTo
	now := s.now().UTC()

	issue.Status = newStatus
	issue.UpdatedAt = now
	if caller.Role == domain.RoleDeveloper &&
		(newStatus == domain.IssueStatusInProgress || newStatus == domain.IssueStatusResolved) {
		assignee := caller.UserID
		issue.AssignedTo = &assignee
	}
	switch newStatus {
	case domain.IssueStatusResolved:
		issue.ResolvedAt = &now
	case domain.IssueStatusClosed:
		issue.ClosedAt = &now
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, mapRepoError(err, "Issue", issueID)
	}

	var outcomes []Outcome
	if oldStatus != newStatus {
		s.metrics.RecordStatusTransition(string(newStatus))
		outcomes = append(outcomes,
			s.effects.Run(EffectHistory, func() error {
				_, err := s.history.RecordStatusChange(ctx, issue.ID, caller.UserID, oldStatus, newStatus)
				return err
			}),
			s.effects.Run(EffectAudit, func() error {
				details := fmt.Sprintf("Status changed: %s -> %s", oldStatus, newStatus)
				_, err := s.audit.Log(ctx, caller.UserID, domain.ActionIssueStatusChanged, domain.EntityIssue, issue.ID, details)
				return err
			}),
			s.effects.Publish(ctx, events.Event{
				Type:      events.EventIssueStatusChanged,
				EntityID:  issue.ID,
				ProjectID: issue.ProjectID,
				Actor:     actorOf(caller),
				Payload:   events.IssueStatusChangedPayload{OldStatus: oldStatus, NewStatus: newStatus},
			}),
		)
	}
	if !sameAssignee(oldAssignee, issue.AssignedTo) {
		outcomes = append(outcomes,
			s.effects.Run(EffectHistory, func() error {
				_, err := s.history.RecordFieldChange(ctx, issue.ID, caller.UserID,
					domain.ChangeTypeFieldUpdate, domain.FieldAssignedTo,
					s.assigneeLabel(ctx, oldAssignee), s.assigneeLabel(ctx, issue.AssignedTo))
				return err
			}),
			s.effects.Publish(ctx, events.Event{
				Type:      events.EventIssueAssigned,
				EntityID:  issue.ID,
				ProjectID: issue.ProjectID,
				Actor:     actorOf(caller),
				Payload:   events.IssueAssignedPayload{OldAssignee: oldAssignee, NewAssignee: issue.AssignedTo},
			}),
		)
	}
	s.effects.Settle("update_issue_status", issue.ID, outcomes...)
	return issue, nil
}

type fieldChange struct {
	field    domain.IssueField
	oldValue string
	newValue string
}

// UpdateIssue edits the supplied fields of an issue. Any project member may
// edit. updatedAt is touched even when nothing changed.
func (s *IssueService) UpdateIssue(ctx context.Context, caller domain.CallerIdentity, issueID string, input IssueUpdateInput) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err, "Issue", issueID)
	}
	if err := s.membership.RequireMember(ctx, issue.ProjectID, caller); err != nil {
		return nil, err
	}
	if err := optionalText(input.Title, "Issue title cannot be empty"); err != nil {
		return nil, err
	}
	if err := optionalText(input.Description, "Issue description cannot be empty"); err != nil {
		return nil, err
	}
	if input.Severity != nil {
		if err := validateSeverity(*input.Severity, "Issue severity cannot be empty"); err != nil {
			return nil, err
		}
	}
	if input.Priority != nil {
		if err := validatePriority(*input.Priority, "Issue priority cannot be empty"); err != nil {
			return nil, err
		}
	}

	var changes []fieldChange
	var details strings.Builder
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title != issue.Title {
			changes = append(changes, fieldChange{domain.FieldTitle, issue.Title, title})
			fmt.Fprintf(&details, "title: %s -> %s; ", issue.Title, title)
			issue.Title = title
		}
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description != issue.Description {
			changes = append(changes, fieldChange{domain.FieldDescription, issue.Description, description})
			details.WriteString("description updated; ")
			issue.Description = description
		}
	}
	if input.Severity != nil && *input.Severity != issue.Severity {
		changes = append(changes, fieldChange{domain.FieldSeverity, string(issue.Severity), string(*input.Severity)})
		fmt.Fprintf(&details, "severity: %s -> %s; ", issue.Severity, *input.Severity)
		issue.Severity = *input.Severity
	}
	if input.Priority != nil && *input.Priority != issue.Priority {
		changes = append(changes, fieldChange{domain.FieldPriority, string(issue.Priority), string(*input.Priority)})
		fmt.Fprintf(&details, "priority: %s -> %s; ", issue.Priority, *input.Priority)
		issue.Priority = *input.Priority
	}

	issue.UpdatedAt = s.now().UTC()
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, mapRepoError(err, "Issue", issueID)
	}
	if len(changes) == 0 {
		return issue, nil
	}

	outcomes := make([]Outcome, 0, len(changes)+2)
	fields := make([]domain.IssueField, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.field)
		outcomes = append(outcomes, s.effects.Run(EffectHistory, func() error {
			_, err := s.history.RecordFieldChange(ctx, issue.ID, caller.UserID,
				domain.ChangeTypeFieldUpdate, c.field, c.oldValue, c.newValue)
			return err
		}))
	}
	outcomes = append(outcomes,
		s.effects.Run(EffectAudit, func() error {
			_, err := s.audit.Log(ctx, caller.UserID, domain.ActionIssueUpdated, domain.EntityIssue, issue.ID, details.String())
			return err
		}),
		s.effects.Publish(ctx, events.Event{
			Type:      events.EventIssueUpdated,
			EntityID:  issue.ID,
			ProjectID: issue.ProjectID,
			Actor:     actorOf(caller),
			Payload:   events.IssueUpdatedPayload{Fields: fields},
		}),
	)
	s.effects.Settle("update_issue", issue.ID, outcomes...)
	return issue, nil
}

// GetIssueByID fetches a single issue.
func (s *IssueService) GetIssueByID(ctx context.Context, issueID string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err, "Issue", issueID)
	}
	return issue, nil
}

// GetAllIssues lists every issue, newest first.
func (s *IssueService) GetAllIssues(ctx context.Context) ([]domain.Issue, error) {
	issues, err := s.issues.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return issues, nil
}

// GetIssuesByProject lists the issues of an existing project.
func (s *IssueService) GetIssuesByProject(ctx context.Context, projectID string) ([]domain.Issue, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, mapRepoError(err, "Project", projectID)
	}
	issues, err := s.issues.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return issues, nil
}

// GetIssuesByUser lists the issues reported by an existing user.
func (s *IssueService) GetIssuesByUser(ctx context.Context, userID string) ([]domain.Issue, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, mapRepoError(err, "User", userID)
	}
	issues, err := s.issues.ListByCreator(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return issues, nil
}

// GetIssuesAssignedToDeveloper returns the issues of every project the
// developer is a member of, without duplicates.
func (s *IssueService) GetIssuesAssignedToDeveloper(ctx context.Context, developerID string) ([]domain.Issue, error) {
	user, err := s.users.GetByID(ctx, developerID)
	if err != nil {
		return nil, mapRepoError(err, "User", developerID)
	}
	if user.Role != domain.RoleDeveloper {
		return nil, apperrors.NewValidationError(fmt.Sprintf("User with ID %s is not a DEVELOPER", developerID), nil)
	}

	assignments, err := s.assigns.ListByUser(ctx, developerID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	seen := make(map[string]bool)
	result := make([]domain.Issue, 0)
	for _, a := range assignments {
		issues, err := s.issues.ListByProject(ctx, a.ProjectID)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		for _, issue := range issues {
			if seen[issue.ID] {
				continue
			}
			seen[issue.ID] = true
			result = append(result, issue)
		}
	}
	return result, nil
}

// GetIssueHistory returns the change log of an existing issue, newest first.
func (s *IssueService) GetIssueHistory(ctx context.Context, issueID string) ([]domain.IssueHistory, error) {
	if _, err := s.issues.GetByID(ctx, issueID); err != nil {
		return nil, mapRepoError(err, "Issue", issueID)
	}
	entries, err := s.history.ListForIssue(ctx, issueID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

func (s *IssueService) assigneeLabel(ctx context.Context, userID *string) string {
	if userID == nil {
		return unassignedLabel
	}
	user, err := s.users.GetByID(ctx, *userID)
	if err != nil {
		s.logger.Debug("assignee lookup failed", zap.String("user_id", *userID), zap.Error(err))
		return *userID
	}
	return user.Username
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func actorOf(caller domain.CallerIdentity) events.Actor {
	return events.Actor{UserID: caller.UserID, Role: caller.Role}
}
