package service

import (
	"context"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

// PermissionService is the single authorization gate for workspace-scoped
// operations. Every protected service method calls through here before
// touching data.
type PermissionService struct {
	memberRepo repository.MemberRepository
	formRepo   repository.FormRepository
}

func NewPermissionService(memberRepo repository.MemberRepository, formRepo repository.FormRepository) *PermissionService {
	return &PermissionService{memberRepo: memberRepo, formRepo: formRepo}
}

// Authorize checks membership first, then the role table. A non-member gets
// Forbidden regardless of the action so workspace existence does not leak.
func (s *PermissionService) Authorize(ctx context.Context, userID, workspaceID string, action types.Action) (types.Role, error) {
	role, found, err := s.memberRepo.GetRole(ctx, workspaceID, userID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", apperr.Forbidden("You are not a member of this workspace")
	}
	if !role.Permits(action) {
		return "", apperr.Forbidden("You do not have permission to perform this action")
	}
	return role, nil
}

// AuthorizeForm additionally pins the form to the workspace in the URL so a
// member of one workspace cannot address another workspace's form.
func (s *PermissionService) AuthorizeForm(ctx context.Context, userID, workspaceID, formID string, action types.Action) (types.Role, *repository.Form, error) {
	role, err := s.Authorize(ctx, userID, workspaceID, action)
	if err != nil {
		return "", nil, err
	}

	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return "", nil, err
	}
	if form == nil {
		return "", nil, apperr.NotFound("Form not found")
	}
	if form.WorkspaceID != workspaceID {
		return "", nil, apperr.Forbidden("Form does not belong to this workspace")
	}
	return role, form, nil
}
