package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formloom/formloom-backend/internal/types"
)

type WorkspaceMember struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspaceId"`
	UserID      string     `json:"userId"`
	Role        types.Role `json:"role"`
	JoinedAt    time.Time  `json:"joinedAt"`
	User        *User      `json:"user,omitempty"`
}

// MemberRepository is the membership store. It enforces (workspace_id,
// user_id) uniqueness and nothing else; role policy stays in the services.
type MemberRepository interface {
	Add(ctx context.Context, member *WorkspaceMember) error
	FindByWorkspace(ctx context.Context, workspaceID string) ([]*WorkspaceMember, error)
	GetRole(ctx context.Context, workspaceID, userID string) (types.Role, bool, error)
	Remove(ctx context.Context, workspaceID, userID string) error
}

type pgMemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &pgMemberRepository{pool: pool}
}

func (r *pgMemberRepository) Add(ctx context.Context, member *WorkspaceMember) error {
	query := `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`
	err := r.pool.QueryRow(ctx, query, member.WorkspaceID, member.UserID, member.Role).
		Scan(&member.ID, &member.JoinedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *pgMemberRepository) FindByWorkspace(ctx context.Context, workspaceID string) ([]*WorkspaceMember, error) {
	query := `
		SELECT wm.id, wm.workspace_id, wm.user_id, wm.role, wm.joined_at,
		       u.id, u.email, u.name
		FROM workspace_members wm
		JOIN users u ON wm.user_id = u.id
		WHERE wm.workspace_id = $1
		ORDER BY wm.joined_at
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*WorkspaceMember
	for rows.Next() {
		m := &WorkspaceMember{User: &User{}}
		if err := rows.Scan(
			&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.User.ID, &m.User.Email, &m.User.Name,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgMemberRepository) GetRole(ctx context.Context, workspaceID, userID string) (types.Role, bool, error) {
	query := `
		SELECT role FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`
	var role types.Role
	err := r.pool.QueryRow(ctx, query, workspaceID, userID).Scan(&role)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

func (r *pgMemberRepository) Remove(ctx context.Context, workspaceID, userID string) error {
	query := `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, workspaceID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}
