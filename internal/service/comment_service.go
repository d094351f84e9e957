package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/policy"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const previewLength = 80

// CommentService manages comments on issues. The author or an admin may
// change or remove a comment.
type CommentService struct {
	comments   repository.CommentRepository
	issues     repository.IssueRepository
	membership *policy.Membership
	audit      *AuditService
	effects    *SideEffects
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	IssueRepo   repository.IssueRepository
	Membership  *policy.Membership
	Audit       *AuditService
	Effects     *SideEffects
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	effects := deps.Effects
	if effects == nil {
		effects = NewSideEffects(nil, nil, nil)
	}
	return &CommentService{
		comments:   deps.CommentRepo,
		issues:     deps.IssueRepo,
		membership: deps.Membership,
		audit:      deps.Audit,
		effects:    effects,
	}
}

// CreateComment adds a comment. Non-admin callers must belong to the issue's project.
func (s *CommentService) CreateComment(ctx context.Context, caller domain.CallerIdentity, issueID, content string) (*domain.Comment, error) {
	if err := requireText(content, "Comment content cannot be empty"); err != nil {
		return nil, err
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err, "Issue", issueID)
	}
	if !caller.IsAdmin() {
		if err := s.membership.RequireMember(ctx, issue.ProjectID, caller); err != nil {
			return nil, err
		}
	}

	comment := &domain.Comment{IssueID: issueID, AuthorID: caller.UserID, Content: strings.TrimSpace(content)}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.effects.Settle("create_comment", comment.ID,
		s.effects.Run(EffectAudit, func() error {
			_, err := s.audit.Log(ctx, caller.UserID, domain.ActionCommentCreated, domain.EntityComment, comment.ID,
				fmt.Sprintf("Comment added to issue %s", issueID))
			return err
		}),
		s.effects.Publish(ctx, events.Event{
			Type:      events.EventCommentAdded,
			EntityID:  issueID,
			ProjectID: issue.ProjectID,
			Actor:     actorOf(caller),
			Payload:   events.CommentAddedPayload{CommentID: comment.ID, BodyPreview: preview(comment.Content)},
		}),
	)
	return comment, nil
}

// ListComments returns the comments of an existing issue, oldest first.
func (s *CommentService) ListComments(ctx context.Context, issueID string) ([]domain.Comment, error) {
	if _, err := s.issues.GetByID(ctx, issueID); err != nil {
		return nil, mapRepoError(err, "Issue", issueID)
	}
	comments, err := s.comments.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return comments, nil
}

// GetComment fetches a comment that belongs to issueID.
func (s *CommentService) GetComment(ctx context.Context, issueID, commentID string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, mapRepoError(err, "Comment", commentID)
	}
	if comment.IssueID != issueID {
		return nil, apperrors.NewNotFound("Comment", commentID)
	}
	return comment, nil
}

// UpdateComment replaces the content of a comment.
func (s *CommentService) UpdateComment(ctx context.Context, caller domain.CallerIdentity, issueID, commentID, content string) (*domain.Comment, error) {
	if err := requireText(content, "Comment content cannot be empty"); err != nil {
		return nil, err
	}
	comment, err := s.GetComment(ctx, issueID, commentID)
	if err != nil {
		return nil, err
	}
	if err := canModify(caller, comment, "update"); err != nil {
		return nil, err
	}

	comment.Content = strings.TrimSpace(content)
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, mapRepoError(err, "Comment", commentID)
	}
	s.effects.Settle("update_comment", comment.ID,
		s.effects.Run(EffectAudit, func() error {
			_, err := s.audit.Log(ctx, caller.UserID, domain.ActionCommentUpdated, domain.EntityComment, comment.ID,
				fmt.Sprintf("Comment updated on issue %s", issueID))
			return err
		}),
	)
	return comment, nil
}

// DeleteComment removes a comment.
func (s *CommentService) DeleteComment(ctx context.Context, caller domain.CallerIdentity, issueID, commentID string) error {
	comment, err := s.GetComment(ctx, issueID, commentID)
	if err != nil {
		return err
	}
	if err := canModify(caller, comment, "delete"); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return mapRepoError(err, "Comment", commentID)
	}
	s.effects.Settle("delete_comment", commentID,
		s.effects.Run(EffectAudit, func() error {
			_, err := s.audit.Log(ctx, caller.UserID, domain.ActionCommentDeleted, domain.EntityComment, commentID,
				fmt.Sprintf("Comment deleted from issue %s", issueID))
			return err
		}),
	)
	return nil
}

func canModify(caller domain.CallerIdentity, comment *domain.Comment, verb string) error {
	if caller.IsAdmin() || comment.AuthorID == caller.UserID {
		return nil
	}
	return apperrors.NewForbidden(fmt.Sprintf("Only the comment author or an admin can %s this comment", verb))
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewLength {
		return body
	}
	runes := []rune(body)
	return string(runes[:previewLength]) + "..."
}
