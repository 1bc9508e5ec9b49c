package service

import (
	"context"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	permission    *PermissionService
}

func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, permission *PermissionService) *WorkspaceService {
	return &WorkspaceService{workspaceRepo: workspaceRepo, permission: permission}
}

func (s *WorkspaceService) Create(ctx context.Context, userID, name string) (*repository.Workspace, error) {
	workspace := &repository.Workspace{Name: name, OwnerID: userID}
	if err := s.workspaceRepo.CreateWithOwner(ctx, workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

// List returns the caller's workspaces split into owned and joined; joined
// excludes OWNER memberships so the two lists never overlap.
func (s *WorkspaceService) List(ctx context.Context, userID string) (owned, joined []*repository.Workspace, err error) {
	owned, err = s.workspaceRepo.FindOwnedByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	joined, err = s.workspaceRepo.FindJoinedByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return owned, joined, nil
}

func (s *WorkspaceService) Get(ctx context.Context, userID, workspaceID string) (*repository.Workspace, error) {
	if _, err := s.permission.Authorize(ctx, userID, workspaceID, types.ActionRead); err != nil {
		return nil, err
	}
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, apperr.NotFound("Workspace not found")
	}
	return workspace, nil
}

func (s *WorkspaceService) Rename(ctx context.Context, userID, workspaceID, name string) (*repository.Workspace, error) {
	if _, err := s.permission.Authorize(ctx, userID, workspaceID, types.ActionUpdateWorkspace); err != nil {
		return nil, err
	}
	workspace, err := s.workspaceRepo.UpdateName(ctx, workspaceID, name)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, apperr.NotFound("Workspace not found")
	}
	return workspace, nil
}

func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID string) error {
	if _, err := s.permission.Authorize(ctx, userID, workspaceID, types.ActionDeleteWorkspace); err != nil {
		return err
	}
	if err := s.workspaceRepo.Delete(ctx, workspaceID); err != nil {
		if err == repository.ErrNoRows {
			return apperr.NotFound("Workspace not found")
		}
		return err
	}
	return nil
}
