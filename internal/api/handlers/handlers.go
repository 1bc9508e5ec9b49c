package handlers

import (
	"github.com/formloom/formloom-backend/internal/media"
	"github.com/formloom/formloom-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth      *AuthHandler
	Workspace *WorkspaceHandler
	Member    *MemberHandler
	Form      *FormHandler
	Asset     *AssetHandler
	Media     *MediaHandler
	Health    *HealthHandler
}

func NewHandlers(services *service.Services, cloudinary *media.Cloudinary, health *HealthHandler) *Handlers {
	return &Handlers{
		Auth:      &AuthHandler{authService: services.Auth},
		Workspace: &WorkspaceHandler{workspaceService: services.Workspace},
		Member: &MemberHandler{
			memberService:     services.Member,
			invitationService: services.Invitation,
		},
		Form: &FormHandler{
			formService:      services.Form,
			analyticsService: services.Analytics,
		},
		Asset:  &AssetHandler{assetService: services.Asset},
		Media:  &MediaHandler{cloudinary: cloudinary},
		Health: health,
	}
}
