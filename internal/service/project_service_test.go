package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

func TestProjectLifecycle(t *testing.T) {
	h := newHarness(t)

	_, err := h.projects.CreateProject(h.ctx, caller(h.alice), ProjectCreateInput{Name: "X"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = h.projects.CreateProject(h.ctx, caller(h.root), ProjectCreateInput{Name: " "})
	assert.Equal(t, "Project name cannot be empty", err.Error())

	p, err := h.projects.CreateProject(h.ctx, caller(h.root), ProjectCreateInput{Name: " Mobile ", Description: "apps"})
	require.NoError(t, err)
	assert.Equal(t, "Mobile", p.Name)
	assert.Equal(t, domain.ProjectStatusActive, p.Status)
	assert.Equal(t, h.root.ID, p.CreatedBy)

	archived := domain.ProjectStatusArchived
	updated, err := h.projects.UpdateProject(h.ctx, caller(h.root), p.ID, ProjectUpdateInput{
		Name:   ptr("Mobile Apps"),
		Status: &archived,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mobile Apps", updated.Name)
	assert.Equal(t, "apps", updated.Description)
	assert.Equal(t, domain.ProjectStatusArchived, updated.Status)
	assert.NotNil(t, updated.UpdatedAt)

	_, err = h.projects.UpdateProject(h.ctx, caller(h.root), p.ID, ProjectUpdateInput{Name: ptr("")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	bogus := domain.ProjectStatus("FROZEN")
	_, err = h.projects.UpdateProject(h.ctx, caller(h.root), p.ID, ProjectUpdateInput{Status: &bogus})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = h.projects.UpdateProject(h.ctx, caller(h.root), "missing", ProjectUpdateInput{Name: ptr("y")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	mine, err := h.projects.ListProjectsByCreator(h.ctx, h.root.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	logs, err := h.audit.ListByEntityType(h.ctx, domain.EntityProject)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActionProjectUpdated, logs[0].Action)
	assert.Equal(t, "name: Mobile -> Mobile Apps; status: ACTIVE -> ARCHIVED; ", logs[0].Details)
	assert.Equal(t, domain.ActionProjectCreated, logs[1].Action)
}

func TestDeleteProject_Cascades(t *testing.T) {
	h := newHarness(t)
	issue := h.createIssue()
	_, err := h.comments.CreateComment(h.ctx, caller(h.bob), issue.ID, "looking")
	require.NoError(t, err)

	err = h.projects.DeleteProject(h.ctx, caller(h.alice), h.project.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	require.NoError(t, h.projects.DeleteProject(h.ctx, caller(h.root), h.project.ID))

	_, err = h.projects.GetProject(h.ctx, h.project.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	_, err = h.issues.GetIssueByID(h.ctx, issue.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	member, err := h.store.Assignments.Exists(h.ctx, h.project.ID, h.alice.ID)
	require.NoError(t, err)
	assert.False(t, member)

	logs, err := h.audit.ListByEntityType(h.ctx, domain.EntityProject)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, domain.ActionProjectDeleted, logs[0].Action)

	err = h.projects.DeleteProject(h.ctx, caller(h.root), h.project.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
