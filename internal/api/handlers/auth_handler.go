package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formloom/formloom-backend/internal/models"
	"github.com/formloom/formloom-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, token, err := h.authService.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Account created", gin.H{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, token, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Signed in", gin.H{
		"user":  user,
		"token": token,
	})
}
