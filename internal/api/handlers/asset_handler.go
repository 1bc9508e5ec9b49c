package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formloom/formloom-backend/internal/api/middleware"
	"github.com/formloom/formloom-backend/internal/models"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/service"
)

type AssetHandler struct {
	assetService *service.AssetService
}

func (h *AssetHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	assets, err := h.assetService.List(c.Request.Context(), userID, c.Param("workspaceId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if assets == nil {
		assets = []*repository.WorkspaceAsset{}
	}

	respondSuccess(c, http.StatusOK, "Assets fetched", assets)
}

func (h *AssetHandler) Add(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.AddAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	asset, err := h.assetService.Add(c.Request.Context(), userID, c.Param("workspaceId"), req.ImageURL, req.ImagePublicID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Asset added", asset)
}

func (h *AssetHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.DeleteAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.assetService.Delete(c.Request.Context(), userID, c.Param("workspaceId"), req.AssetID); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Asset deleted", nil)
}
