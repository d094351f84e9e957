package service

import (
	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

func requireAdmin(caller domain.CallerIdentity) error {
	if !caller.IsAdmin() {
		return apperrors.NewForbidden("Only Admin users can perform this action")
	}
	return nil
}
