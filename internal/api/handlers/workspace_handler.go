package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formloom/formloom-backend/internal/api/middleware"
	"github.com/formloom/formloom-backend/internal/models"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/service"
)

type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	workspace, err := h.workspaceService.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Workspace created", workspace)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	owned, joined, err := h.workspaceService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if owned == nil {
		owned = []*repository.Workspace{}
	}
	if joined == nil {
		joined = []*repository.Workspace{}
	}

	respondSuccess(c, http.StatusOK, "Workspaces fetched", gin.H{
		"ownedWorkspaces":  owned,
		"joinedWorkspaces": joined,
	})
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	workspace, err := h.workspaceService.Get(c.Request.Context(), userID, c.Param("workspaceId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Workspace fetched", workspace)
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	workspace, err := h.workspaceService.Rename(c.Request.Context(), userID, c.Param("workspaceId"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Workspace updated", workspace)
}

func (h *WorkspaceHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(c.Request.Context(), userID, c.Param("workspaceId")); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Workspace deleted", nil)
}
