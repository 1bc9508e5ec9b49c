// Package service holds the business rules. Services speak to storage
// through the repository interfaces and to the outside world (mail, media,
// cache, realtime) through the narrow interfaces below, so everything here
// is testable with fakes.
package service

import (
	"context"
	"time"

	"github.com/formloom/formloom-backend/internal/config"
	"github.com/formloom/formloom-backend/internal/repository"
)

// Mailer delivers invitation mail. Nil-safe: services skip mail when no
// mailer is configured.
type Mailer interface {
	SendInvitation(to, inviterName, workspaceName, role, token string) error
}

// MediaStore is the remote asset backend (Cloudinary in production).
type MediaStore interface {
	Destroy(ctx context.Context, publicID string) error
	DeleteByTag(ctx context.Context, tag string) error
}

// FormCache holds rendered public form payloads keyed by form id.
type FormCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Broadcaster pushes realtime events to workspace dashboards.
type Broadcaster interface {
	BroadcastToWorkspace(workspaceID, event string, payload interface{})
}

type Services struct {
	Auth       *AuthService
	Permission *PermissionService
	Workspace  *WorkspaceService
	Member     *MemberService
	Invitation *InvitationService
	Form       *FormService
	Analytics  *AnalyticsService
	Asset      *AssetService
}

type Deps struct {
	Repos       *repository.Repositories
	Config      *config.Config
	Mailer      Mailer
	MediaStore  MediaStore
	Cache       FormCache
	Broadcaster Broadcaster
}

func NewServices(d Deps) *Services {
	permission := NewPermissionService(d.Repos.MemberRepo, d.Repos.FormRepo)
	return &Services{
		Auth:       NewAuthService(d.Repos.UserRepo, d.Repos.WorkspaceRepo, d.Config),
		Permission: permission,
		Workspace:  NewWorkspaceService(d.Repos.WorkspaceRepo, permission),
		Member:     NewMemberService(d.Repos.MemberRepo, permission),
		Invitation: NewInvitationService(d.Repos.InvitationRepo, d.Repos.MemberRepo, d.Repos.UserRepo, d.Repos.WorkspaceRepo, permission, d.Mailer),
		Form:       NewFormService(d.Repos.FormRepo, d.Repos.SubmissionRepo, permission, d.Cache, d.Broadcaster, d.MediaStore),
		Analytics:  NewAnalyticsService(d.Repos.AnalyticsRepo, d.Repos.SubmissionRepo, d.Repos.FormRepo, permission, d.Broadcaster),
		Asset:      NewAssetService(d.Repos.AssetRepo, permission, d.MediaStore),
	}
}
