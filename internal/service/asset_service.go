package service

import (
	"context"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

type AssetService struct {
	assetRepo  repository.AssetRepository
	permission *PermissionService
	media      MediaStore
}

func NewAssetService(assetRepo repository.AssetRepository, permission *PermissionService, media MediaStore) *AssetService {
	return &AssetService{assetRepo: assetRepo, permission: permission, media: media}
}

func (s *AssetService) List(ctx context.Context, userID, workspaceID string) ([]*repository.WorkspaceAsset, error) {
	if _, err := s.permission.Authorize(ctx, userID, workspaceID, types.ActionRead); err != nil {
		return nil, err
	}
	return s.assetRepo.FindByWorkspace(ctx, workspaceID)
}

// Add registers an uploaded image against the workspace. The per-workspace
// cap is enforced in the insert itself; hitting it is a Conflict, existing
// assets are never evicted.
func (s *AssetService) Add(ctx context.Context, userID, workspaceID, imageURL, imagePublicID string) (*repository.WorkspaceAsset, error) {
	if _, err := s.permission.Authorize(ctx, userID, workspaceID, types.ActionManageAssets); err != nil {
		return nil, err
	}

	asset := &repository.WorkspaceAsset{
		WorkspaceID:   workspaceID,
		ImageURL:      imageURL,
		ImagePublicID: imagePublicID,
	}
	if err := s.assetRepo.AddWithinLimit(ctx, asset); err != nil {
		if err == repository.ErrNoRows {
			return nil, apperr.Conflict("Asset limit reached for this workspace")
		}
		return nil, err
	}
	return asset, nil
}

// Delete removes the remote image first and only then the row, so a failed
// remote delete never leaves an orphaned upload behind.
func (s *AssetService) Delete(ctx context.Context, userID, workspaceID, assetID string) error {
	if _, err := s.permission.Authorize(ctx, userID, workspaceID, types.ActionManageAssets); err != nil {
		return err
	}

	asset, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset == nil || asset.WorkspaceID != workspaceID {
		return apperr.NotFound("Asset not found")
	}

	if s.media != nil {
		if err := s.media.Destroy(ctx, asset.ImagePublicID); err != nil {
			return apperr.Internal("Failed to delete remote asset")
		}
	}

	if err := s.assetRepo.Delete(ctx, asset.ID); err != nil {
		if err == repository.ErrNoRows {
			return apperr.NotFound("Asset not found")
		}
		return err
	}
	return nil
}
