package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

const invitationTTL = 7 * 24 * time.Hour

type InvitationService struct {
	invitationRepo repository.InvitationRepository
	memberRepo     repository.MemberRepository
	userRepo       repository.UserRepository
	workspaceRepo  repository.WorkspaceRepository
	permission     *PermissionService
	mailer         Mailer
}

func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	workspaceRepo repository.WorkspaceRepository,
	permission *PermissionService,
	mailer Mailer,
) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		memberRepo:     memberRepo,
		userRepo:       userRepo,
		workspaceRepo:  workspaceRepo,
		permission:     permission,
		mailer:         mailer,
	}
}

// Invite creates a pending invitation for a registered user. Only ADMIN and
// above may invite, and only ADMIN/EDITOR/VIEWER may be granted.
func (s *InvitationService) Invite(ctx context.Context, inviterID, workspaceID, email, role string) (*repository.Invitation, error) {
	if _, err := s.permission.Authorize(ctx, inviterID, workspaceID, types.ActionInviteMember); err != nil {
		return nil, err
	}
	if !types.IsAssignableRole(role) {
		return nil, apperr.BadRequest("Role must be one of ADMIN, EDITOR or VIEWER")
	}

	invitee, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if invitee == nil {
		return nil, apperr.BadRequest("No registered user with this email")
	}
	if invitee.ID == inviterID {
		return nil, apperr.BadRequest("You cannot invite yourself")
	}

	_, isMember, err := s.memberRepo.GetRole(ctx, workspaceID, invitee.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperr.Conflict("User is already a member of this workspace")
	}

	invitation := &repository.Invitation{
		Email:       invitee.Email,
		UserID:      &invitee.ID,
		WorkspaceID: workspaceID,
		Role:        types.Role(role),
		Token:       uuid.NewString(),
		Status:      types.InvitationPending,
		ExpiresAt:   time.Now().Add(invitationTTL),
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		if err == repository.ErrNoRows {
			return nil, apperr.Conflict("An invitation for this user is already pending")
		}
		return nil, err
	}

	s.sendInvitationMail(ctx, inviterID, workspaceID, invitation)
	return invitation, nil
}

// Mail delivery is best-effort; the invitation stands whether or not the
// message goes out.
func (s *InvitationService) sendInvitationMail(ctx context.Context, inviterID, workspaceID string, invitation *repository.Invitation) {
	if s.mailer == nil {
		return
	}
	inviter, err := s.userRepo.FindByID(ctx, inviterID)
	if err != nil || inviter == nil {
		return
	}
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil || workspace == nil {
		return
	}
	go func() {
		if err := s.mailer.SendInvitation(invitation.Email, inviter.Name, workspace.Name, string(invitation.Role), invitation.Token); err != nil {
			log.Printf("[EMAIL] Failed to send invitation to %s: %v", invitation.Email, err)
		}
	}()
}

// ListMine returns the caller's pending invitations, matched by user id or
// email so invites sent before sign-up still show up.
func (s *InvitationService) ListMine(ctx context.Context, userID, email string) ([]*repository.Invitation, error) {
	return s.invitationRepo.FindPendingForUser(ctx, userID, email)
}

// Accept joins the workspace named by the token. When the invitation is
// pinned to a user id the accepter must be that user; every other failure
// (missing, processed, expired) collapses into one Gone response so the
// token does not reveal invitation state to outsiders.
func (s *InvitationService) Accept(ctx context.Context, userID, token string) (*repository.WorkspaceMember, error) {
	member, err := s.invitationRepo.Accept(ctx, token, userID)
	if err == nil {
		return member, nil
	}
	switch err {
	case repository.ErrDuplicate:
		return nil, apperr.Conflict("You are already a member of this workspace")
	case repository.ErrNoRows:
		existing, findErr := s.invitationRepo.FindByToken(ctx, token)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil &&
			existing.Status == types.InvitationPending &&
			existing.ExpiresAt.After(time.Now()) &&
			existing.UserID != nil && *existing.UserID != userID {
			return nil, apperr.Forbidden("This invitation was issued to another user")
		}
		return nil, apperr.Gone("Invitation is invalid or has expired")
	default:
		return nil, err
	}
}

// Reject declines the invitation. Unlike Accept the failure cause is spelled
// out, most specific first: unknown token, already processed, expired, then
// wrong user.
func (s *InvitationService) Reject(ctx context.Context, userID, email, token string) error {
	existing, err := s.invitationRepo.Reject(ctx, token, userID, email)
	if err == nil {
		return nil
	}
	if err != repository.ErrNoRows {
		return err
	}

	switch {
	case existing == nil:
		return apperr.NotFound("Invitation not found")
	case existing.Status != types.InvitationPending:
		return apperr.Conflict("Invitation has already been processed")
	case !existing.ExpiresAt.After(time.Now()):
		return apperr.Gone("Invitation has expired")
	default:
		return apperr.Forbidden("You are not authorized to reject this invitation")
	}
}
