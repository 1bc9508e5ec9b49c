package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formloom/formloom-backend/internal/types"
)

type Invitation struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	UserID      *string                `json:"userId,omitempty"`
	WorkspaceID string                 `json:"workspaceId"`
	Role        types.Role             `json:"role"`
	Token       string                 `json:"token"`
	Status      types.InvitationStatus `json:"status"`
	ExpiresAt   time.Time              `json:"expiresAt"`
	CreatedAt   time.Time              `json:"createdAt"`

	// Joined for display on the invitee's pending list.
	WorkspaceName string `json:"workspaceName,omitempty"`
}

type InvitationRepository interface {
	// Create inserts only while no PENDING unexpired invitation exists for
	// (email, workspace); the check and the insert run in one statement.
	// Returns ErrNoRows when a live invitation is already out.
	Create(ctx context.Context, invitation *Invitation) error
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	FindPendingForUser(ctx context.Context, userID, email string) ([]*Invitation, error)

	// Accept flips the invitation to ACCEPTED and creates the membership in
	// one transaction. The conditional update carries every precondition
	// (PENDING, unexpired, invitee match) so two concurrent accepts cannot
	// both succeed. Returns ErrNoRows when the conditional update matches
	// nothing and ErrDuplicate when the accepter is already a member.
	Accept(ctx context.Context, token, accepterID string) (*WorkspaceMember, error)

	// Reject flips the invitation to REJECTED and forces expiry. When the
	// conditional update matches nothing it re-reads the row in the same
	// transaction and returns it alongside ErrNoRows so the caller can
	// diagnose the exact cause.
	Reject(ctx context.Context, token, rejecterID, rejecterEmail string) (*Invitation, error)
}

type pgInvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &pgInvitationRepository{pool: pool}
}

func (r *pgInvitationRepository) Create(ctx context.Context, invitation *Invitation) error {
	query := `
		INSERT INTO invitations (email, user_id, workspace_id, role, token, status, expires_at)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM invitations
			WHERE email = $1 AND workspace_id = $3 AND status = $6 AND expires_at > NOW()
		)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		invitation.Email, invitation.UserID, invitation.WorkspaceID,
		invitation.Role, invitation.Token, invitation.Status, invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.CreatedAt)
	if err == pgx.ErrNoRows {
		return ErrNoRows
	}
	return err
}

func (r *pgInvitationRepository) FindByToken(ctx context.Context, token string) (*Invitation, error) {
	query := `
		SELECT id, email, user_id, workspace_id, role, token, status, expires_at, created_at
		FROM invitations WHERE token = $1
	`
	return scanInvitation(r.pool.QueryRow(ctx, query, token))
}

func (r *pgInvitationRepository) FindPendingForUser(ctx context.Context, userID, email string) ([]*Invitation, error) {
	query := `
		SELECT i.id, i.email, i.user_id, i.workspace_id, i.role, i.token,
		       i.status, i.expires_at, i.created_at, w.name
		FROM invitations i
		JOIN workspaces w ON i.workspace_id = w.id
		WHERE i.status = $1 AND i.expires_at > NOW()
		  AND (i.user_id = $2 OR i.email = $3)
		ORDER BY i.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, types.InvitationPending, userID, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		inv := &Invitation{}
		if err := rows.Scan(
			&inv.ID, &inv.Email, &inv.UserID, &inv.WorkspaceID, &inv.Role,
			&inv.Token, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt,
			&inv.WorkspaceName,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *pgInvitationRepository) Accept(ctx context.Context, token, accepterID string) (*WorkspaceMember, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	update := `
		UPDATE invitations SET status = $1
		WHERE token = $2 AND status = $3 AND expires_at > NOW()
		  AND (user_id IS NULL OR user_id = $4)
		RETURNING workspace_id, role
	`
	var workspaceID string
	var role types.Role
	err = tx.QueryRow(ctx, update,
		types.InvitationAccepted, token, types.InvitationPending, accepterID,
	).Scan(&workspaceID, &role)
	if err == pgx.ErrNoRows {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}

	member := &WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      accepterID,
		Role:        role,
	}
	insert := `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`
	err = tx.QueryRow(ctx, insert, member.WorkspaceID, member.UserID, member.Role).
		Scan(&member.ID, &member.JoinedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return member, nil
}

func (r *pgInvitationRepository) Reject(ctx context.Context, token, rejecterID, rejecterEmail string) (*Invitation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	update := `
		UPDATE invitations SET status = $1, expires_at = NOW()
		WHERE token = $2 AND status = $3 AND expires_at > NOW()
		  AND (user_id = $4 OR email = $5)
	`
	result, err := tx.Exec(ctx, update,
		types.InvitationRejected, token, types.InvitationPending,
		rejecterID, rejecterEmail,
	)
	if err != nil {
		return nil, err
	}

	if result.RowsAffected() == 0 {
		query := `
			SELECT id, email, user_id, workspace_id, role, token, status, expires_at, created_at
			FROM invitations WHERE token = $1
		`
		existing, scanErr := scanInvitation(tx.QueryRow(ctx, query, token))
		if scanErr != nil {
			return nil, scanErr
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return existing, ErrNoRows
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func scanInvitation(row pgx.Row) (*Invitation, error) {
	inv := &Invitation{}
	err := row.Scan(
		&inv.ID, &inv.Email, &inv.UserID, &inv.WorkspaceID, &inv.Role,
		&inv.Token, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}
