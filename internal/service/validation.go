package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func requireText(value, message string) error {
	if isBlank(value) {
		return apperrors.NewValidationError(message, nil)
	}
	return nil
}

// optionalText rejects a provided but blank value. nil means "unchanged".
func optionalText(value *string, message string) error {
	if value != nil && isBlank(*value) {
		return apperrors.NewValidationError(message, nil)
	}
	return nil
}

func validateSeverity(s domain.Severity, requiredMsg string) error {
	if s == "" {
		return apperrors.NewValidationError(requiredMsg, nil)
	}
	if !s.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid severity: %s", s), map[string]any{"severity": string(s)})
	}
	return nil
}

func validatePriority(p domain.Priority, requiredMsg string) error {
	if p == "" {
		return apperrors.NewValidationError(requiredMsg, nil)
	}
	if !p.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid priority: %s", p), map[string]any{"priority": string(p)})
	}
	return nil
}

func validateStatus(s domain.IssueStatus) error {
	if s == "" {
		return apperrors.NewValidationError("Status cannot be null", nil)
	}
	if !s.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid status: %s", s), map[string]any{"status": string(s)})
	}
	return nil
}
