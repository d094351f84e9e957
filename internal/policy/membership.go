package policy

import (
	"context"
	"fmt"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// AssignmentLookup answers whether a project assignment row exists.
type AssignmentLookup interface {
	Exists(ctx context.Context, projectID, userID string) (bool, error)
}

// Membership checks project assignments. Every call hits the store.
type Membership struct {
	assignments AssignmentLookup
}

// NewMembership builds a Membership backed by the given lookup.
func NewMembership(assignments AssignmentLookup) *Membership {
	return &Membership{assignments: assignments}
}

// IsMember reports whether userID is assigned to projectID.
func (m *Membership) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	ok, err := m.assignments.Exists(ctx, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

// RequireMember returns a permission error when caller is not assigned to projectID.
func (m *Membership) RequireMember(ctx context.Context, projectID string, caller domain.CallerIdentity) error {
	ok, err := m.IsMember(ctx, projectID, caller.UserID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !ok {
		return apperrors.NewForbidden(msgNotAssignedToProject)
	}
	return nil
}
