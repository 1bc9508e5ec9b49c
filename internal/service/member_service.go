package service

import (
	"context"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

type MemberService struct {
	memberRepo repository.MemberRepository
	permission *PermissionService
}

func NewMemberService(memberRepo repository.MemberRepository, permission *PermissionService) *MemberService {
	return &MemberService{memberRepo: memberRepo, permission: permission}
}

func (s *MemberService) List(ctx context.Context, userID, workspaceID string) ([]*repository.WorkspaceMember, error) {
	if _, err := s.permission.Authorize(ctx, userID, workspaceID, types.ActionRead); err != nil {
		return nil, err
	}
	return s.memberRepo.FindByWorkspace(ctx, workspaceID)
}

// GetRole returns the caller's own role in the workspace.
func (s *MemberService) GetRole(ctx context.Context, userID, workspaceID string) (types.Role, error) {
	role, found, err := s.memberRepo.GetRole(ctx, workspaceID, userID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", apperr.Forbidden("You are not a member of this workspace")
	}
	return role, nil
}

// Leave removes the caller's own membership. The OWNER can never leave;
// deleting the workspace is the only way out for them.
func (s *MemberService) Leave(ctx context.Context, userID, workspaceID string) error {
	role, found, err := s.memberRepo.GetRole(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.Forbidden("You are not a member of this workspace")
	}
	if role == types.RoleOwner {
		return apperr.Forbidden("The workspace owner cannot leave the workspace")
	}
	if err := s.memberRepo.Remove(ctx, workspaceID, userID); err != nil {
		if err == repository.ErrNoRows {
			return apperr.NotFound("Membership not found")
		}
		return err
	}
	return nil
}

// Remove kicks another member out. Requires ADMIN and never targets the
// OWNER, whatever the caller's role.
func (s *MemberService) Remove(ctx context.Context, callerID, workspaceID, targetUserID string) error {
	if _, err := s.permission.Authorize(ctx, callerID, workspaceID, types.ActionRemoveMember); err != nil {
		return err
	}
	if callerID == targetUserID {
		return apperr.BadRequest("Use leave to remove yourself from a workspace")
	}

	targetRole, found, err := s.memberRepo.GetRole(ctx, workspaceID, targetUserID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("User is not a member of this workspace")
	}
	if targetRole == types.RoleOwner {
		return apperr.Forbidden("The workspace owner cannot be removed")
	}

	if err := s.memberRepo.Remove(ctx, workspaceID, targetUserID); err != nil {
		if err == repository.ErrNoRows {
			return apperr.NotFound("User is not a member of this workspace")
		}
		return err
	}
	return nil
}
