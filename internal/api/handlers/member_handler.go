package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formloom/formloom-backend/internal/api/middleware"
	"github.com/formloom/formloom-backend/internal/models"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/service"
)

// MemberHandler covers workspace membership and the invitation flow.
type MemberHandler struct {
	memberService     *service.MemberService
	invitationService *service.InvitationService
}

func (h *MemberHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	members, err := h.memberService.List(c.Request.Context(), userID, c.Param("workspaceId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if members == nil {
		members = []*repository.WorkspaceMember{}
	}

	respondSuccess(c, http.StatusOK, "Members fetched", members)
}

func (h *MemberHandler) GetRole(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	role, err := h.memberService.GetRole(c.Request.Context(), userID, c.Param("workspaceId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Role fetched", gin.H{"role": role})
}

func (h *MemberHandler) Leave(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.memberService.Leave(c.Request.Context(), userID, c.Param("workspaceId")); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Left workspace", nil)
}

func (h *MemberHandler) Remove(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	err := h.memberService.Remove(c.Request.Context(), userID, c.Param("workspaceId"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Member removed", nil)
}

func (h *MemberHandler) Invite(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	invitation, err := h.invitationService.Invite(c.Request.Context(), userID, c.Param("workspaceId"), req.Email, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Invitation sent", invitation)
}

func (h *MemberHandler) ListInvitations(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListMine(c.Request.Context(), userID, middleware.GetUserEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if invitations == nil {
		invitations = []*repository.Invitation{}
	}

	respondSuccess(c, http.StatusOK, "Invitations fetched", invitations)
}

func (h *MemberHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.InvitationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	member, err := h.invitationService.Accept(c.Request.Context(), userID, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Invitation accepted", member)
}

func (h *MemberHandler) RejectInvitation(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.InvitationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	err := h.invitationService.Reject(c.Request.Context(), userID, middleware.GetUserEmail(c), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Invitation rejected", nil)
}
