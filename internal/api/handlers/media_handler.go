package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formloom/formloom-backend/internal/api/middleware"
	"github.com/formloom/formloom-backend/internal/media"
	"github.com/formloom/formloom-backend/internal/models"
)

// MediaHandler signs direct-to-Cloudinary uploads and deletes uploads that
// never got attached to anything.
type MediaHandler struct {
	cloudinary *media.Cloudinary
}

func (h *MediaHandler) SignUpload(c *gin.Context) {
	if _, ok := middleware.RequireUserID(c); !ok {
		return
	}

	var req models.SignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	signature, err := h.cloudinary.SignUpload(req.Type, req.TypeID, req.ResourceType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Upload signed", signature)
}

func (h *MediaHandler) Delete(c *gin.Context) {
	if _, ok := middleware.RequireUserID(c); !ok {
		return
	}

	var req models.DeleteMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.cloudinary.Destroy(c.Request.Context(), req.PublicID); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Media deleted", nil)
}
