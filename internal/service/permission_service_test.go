package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

func TestAuthorize_NonMemberForbidden(t *testing.T) {
	members := newFakeMemberRepo()
	svc := NewPermissionService(members, newFakeFormRepo())

	_, err := svc.Authorize(context.Background(), "stranger", "ws-1", types.ActionRead)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
}

func TestAuthorize_InsufficientRole(t *testing.T) {
	members := newFakeMemberRepo()
	members.put("ws-1", "viewer", types.RoleViewer)
	svc := NewPermissionService(members, newFakeFormRepo())

	_, err := svc.Authorize(context.Background(), "viewer", "ws-1", types.ActionCreateForm)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
}

func TestAuthorize_RoleHierarchy(t *testing.T) {
	members := newFakeMemberRepo()
	members.put("ws-1", "owner", types.RoleOwner)
	members.put("ws-1", "admin", types.RoleAdmin)
	members.put("ws-1", "editor", types.RoleEditor)
	svc := NewPermissionService(members, newFakeFormRepo())
	ctx := context.Background()

	// OWNER passes every gate
	for _, action := range []types.Action{
		types.ActionDeleteWorkspace, types.ActionInviteMember,
		types.ActionDeleteForm, types.ActionCreateForm, types.ActionRead,
	} {
		role, err := svc.Authorize(ctx, "owner", "ws-1", action)
		require.NoError(t, err, "owner should pass %s", action)
		assert.Equal(t, types.RoleOwner, role)
	}

	// ADMIN cannot touch the workspace itself
	_, err := svc.Authorize(ctx, "admin", "ws-1", types.ActionDeleteWorkspace)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
	_, err = svc.Authorize(ctx, "admin", "ws-1", types.ActionUpdateWorkspace)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
	_, err = svc.Authorize(ctx, "admin", "ws-1", types.ActionDeleteForm)
	assert.NoError(t, err)

	// EDITOR builds forms but does not manage people
	_, err = svc.Authorize(ctx, "editor", "ws-1", types.ActionCreateForm)
	assert.NoError(t, err)
	_, err = svc.Authorize(ctx, "editor", "ws-1", types.ActionInviteMember)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
}

func TestAuthorizeForm_CrossWorkspaceForbidden(t *testing.T) {
	members := newFakeMemberRepo()
	members.put("ws-1", "editor", types.RoleEditor)
	forms := newFakeFormRepo()
	form := &repository.Form{WorkspaceID: "ws-2", Title: "other tenant"}
	require.NoError(t, forms.CreateWithFirstPage(context.Background(), form))

	svc := NewPermissionService(members, forms)
	_, _, err := svc.AuthorizeForm(context.Background(), "editor", "ws-1", form.ID, types.ActionRead)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
}

func TestAuthorizeForm_UnknownFormNotFound(t *testing.T) {
	members := newFakeMemberRepo()
	members.put("ws-1", "editor", types.RoleEditor)
	svc := NewPermissionService(members, newFakeFormRepo())

	_, _, err := svc.AuthorizeForm(context.Background(), "editor", "ws-1", "missing", types.ActionRead)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}

func TestAuthorizeForm_OK(t *testing.T) {
	members := newFakeMemberRepo()
	members.put("ws-1", "editor", types.RoleEditor)
	forms := newFakeFormRepo()
	form := &repository.Form{WorkspaceID: "ws-1", Title: "mine"}
	require.NoError(t, forms.CreateWithFirstPage(context.Background(), form))

	svc := NewPermissionService(members, forms)
	role, got, err := svc.AuthorizeForm(context.Background(), "editor", "ws-1", form.ID, types.ActionUpdateForm)
	require.NoError(t, err)
	assert.Equal(t, types.RoleEditor, role)
	assert.Equal(t, form.ID, got.ID)
}
