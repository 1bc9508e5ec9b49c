package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formloom/formloom-backend/internal/types"
)

type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WorkspaceRepository interface {
	// CreateWithOwner creates the workspace and its OWNER membership in a
	// single transaction; a workspace must never exist without its owner row.
	CreateWithOwner(ctx context.Context, workspace *Workspace) error
	FindByID(ctx context.Context, id string) (*Workspace, error)
	FindOwnedByUser(ctx context.Context, userID string) ([]*Workspace, error)
	FindJoinedByUser(ctx context.Context, userID string) ([]*Workspace, error)
	UpdateName(ctx context.Context, id, name string) (*Workspace, error)
	Delete(ctx context.Context, id string) error
}

type pgWorkspaceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) WorkspaceRepository {
	return &pgWorkspaceRepository{pool: pool}
}

func (r *pgWorkspaceRepository) CreateWithOwner(ctx context.Context, workspace *Workspace) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO workspaces (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	if err := tx.QueryRow(ctx, query, workspace.Name, workspace.OwnerID).
		Scan(&workspace.ID, &workspace.CreatedAt, &workspace.UpdatedAt); err != nil {
		return err
	}

	memberQuery := `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.Exec(ctx, memberQuery, workspace.ID, workspace.OwnerID, types.RoleOwner); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgWorkspaceRepository) FindByID(ctx context.Context, id string) (*Workspace, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM workspaces WHERE id = $1
	`
	ws := &Workspace{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *pgWorkspaceRepository) FindOwnedByUser(ctx context.Context, userID string) ([]*Workspace, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM workspaces WHERE owner_id = $1
		ORDER BY created_at
	`
	return r.queryWorkspaces(ctx, query, userID)
}

func (r *pgWorkspaceRepository) FindJoinedByUser(ctx context.Context, userID string) ([]*Workspace, error) {
	query := `
		SELECT w.id, w.name, w.owner_id, w.created_at, w.updated_at
		FROM workspaces w
		JOIN workspace_members wm ON w.id = wm.workspace_id
		WHERE wm.user_id = $1 AND wm.role <> $2
		ORDER BY w.created_at
	`
	return r.queryWorkspaces(ctx, query, userID, types.RoleOwner)
}

func (r *pgWorkspaceRepository) queryWorkspaces(ctx context.Context, query string, args ...interface{}) ([]*Workspace, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []*Workspace
	for rows.Next() {
		ws := &Workspace{}
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, rows.Err()
}

func (r *pgWorkspaceRepository) UpdateName(ctx context.Context, id, name string) (*Workspace, error) {
	query := `
		UPDATE workspaces SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, owner_id, created_at, updated_at
	`
	ws := &Workspace{}
	err := r.pool.QueryRow(ctx, query, id, name).Scan(
		&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *pgWorkspaceRepository) Delete(ctx context.Context, id string) error {
	// Members, invitations, forms, pages, submissions, visits, summaries
	// and assets cascade at the schema level.
	query := `DELETE FROM workspaces WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}
