package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	// Core repositories (pgxpool)
	UserRepo       UserRepository
	WorkspaceRepo  WorkspaceRepository
	MemberRepo     MemberRepository
	InvitationRepo InvitationRepository
	FormRepo       FormRepository
	SubmissionRepo SubmissionRepository
	AssetRepo      AssetRepository

	// Analytics repository (sqlx)
	AnalyticsRepo AnalyticsRepository
}

func NewRepositories(pool *pgxpool.Pool, db *sqlx.DB) *Repositories {
	return &Repositories{
		UserRepo:       NewUserRepository(pool),
		WorkspaceRepo:  NewWorkspaceRepository(pool),
		MemberRepo:     NewMemberRepository(pool),
		InvitationRepo: NewInvitationRepository(pool),
		FormRepo:       NewFormRepository(pool),
		SubmissionRepo: NewSubmissionRepository(pool),
		AssetRepo:      NewAssetRepository(pool),

		AnalyticsRepo: NewAnalyticsRepository(db),
	}
}
