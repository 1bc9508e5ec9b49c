package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formloom/formloom-backend/internal/types"
)

type WorkspaceAsset struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspaceId"`
	ImageURL      string    `json:"imageUrl"`
	ImagePublicID string    `json:"imagePublicId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type AssetRepository interface {
	// AddWithinLimit inserts only while the workspace holds fewer than the
	// asset cap; the count check and the insert run in one statement so two
	// concurrent uploads cannot both slip past the limit. Returns ErrNoRows
	// when the cap is already reached.
	AddWithinLimit(ctx context.Context, asset *WorkspaceAsset) error
	FindByID(ctx context.Context, id string) (*WorkspaceAsset, error)
	FindByWorkspace(ctx context.Context, workspaceID string) ([]*WorkspaceAsset, error)
	Delete(ctx context.Context, id string) error
}

type pgAssetRepository struct {
	pool *pgxpool.Pool
}

func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &pgAssetRepository{pool: pool}
}

func (r *pgAssetRepository) AddWithinLimit(ctx context.Context, asset *WorkspaceAsset) error {
	query := `
		INSERT INTO workspace_assets (workspace_id, image_url, image_public_id)
		SELECT $1, $2, $3
		WHERE (SELECT COUNT(*) FROM workspace_assets WHERE workspace_id = $1) < $4
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		asset.WorkspaceID, asset.ImageURL, asset.ImagePublicID, types.MaxWorkspaceAssets,
	).Scan(&asset.ID, &asset.CreatedAt)
	if err == pgx.ErrNoRows {
		return ErrNoRows
	}
	return err
}

func (r *pgAssetRepository) FindByID(ctx context.Context, id string) (*WorkspaceAsset, error) {
	query := `
		SELECT id, workspace_id, image_url, image_public_id, created_at
		FROM workspace_assets WHERE id = $1
	`
	a := &WorkspaceAsset{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.WorkspaceID, &a.ImageURL, &a.ImagePublicID, &a.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgAssetRepository) FindByWorkspace(ctx context.Context, workspaceID string) ([]*WorkspaceAsset, error) {
	query := `
		SELECT id, workspace_id, image_url, image_public_id, created_at
		FROM workspace_assets WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*WorkspaceAsset
	for rows.Next() {
		a := &WorkspaceAsset{}
		if err := rows.Scan(&a.ID, &a.WorkspaceID, &a.ImageURL, &a.ImagePublicID, &a.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *pgAssetRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM workspace_assets WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}
