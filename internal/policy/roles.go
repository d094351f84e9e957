// Package policy holds the role and membership rules that gate issue operations.
package policy

import (
	"github.com/spec-kit/issue-tracker/internal/domain"
)

const (
	msgOnlyTestersCreate    = "Only Testers can create issues"
	msgDeveloperStatus      = "Developers can only set status to IN_PROGRESS or RESOLVED"
	msgTesterStatus         = "Testers can only set status to CLOSED or OPEN"
	msgStatusRolesOnly      = "Only Testers and Developers can update issue status."
	msgNotAssignedToProject = "User is not assigned to this project"
)

// statusTargets lists, per role, the statuses that role may move an issue into.
var statusTargets = map[domain.Role]map[domain.IssueStatus]bool{
	domain.RoleDeveloper: {
		domain.IssueStatusInProgress: true,
		domain.IssueStatusResolved:   true,
	},
	domain.RoleTester: {
		domain.IssueStatusOpen:   true,
		domain.IssueStatusClosed: true,
	},
}

var statusDenials = map[domain.Role]string{
	domain.RoleDeveloper: msgDeveloperStatus,
	domain.RoleTester:    msgTesterStatus,
}

// Decision is the outcome of a policy check. Reason is empty when Allowed is true.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// CanCreateIssue reports whether role may report new issues.
func CanCreateIssue(role domain.Role) Decision {
	if role == domain.RoleTester {
		return allow()
	}
	return deny(msgOnlyTestersCreate)
}

// CanChangeStatus reports whether role may change issue status at all.
func CanChangeStatus(role domain.Role) Decision {
	if _, ok := statusTargets[role]; !ok {
		return deny(msgStatusRolesOnly)
	}
	return allow()
}

// CanSetStatus reports whether role may move an issue into target.
// The current status is not consulted.
func CanSetStatus(role domain.Role, target domain.IssueStatus) Decision {
	targets, ok := statusTargets[role]
	if !ok {
		return deny(msgStatusRolesOnly)
	}
	if targets[target] {
		return allow()
	}
	return deny(statusDenials[role])
}
