package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/formloom/formloom-backend/internal/api/middleware"
	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/models"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/service"
)

var errBadPageQuery = apperr.BadRequest("Query parameter p must be a positive page number")

// FormHandler covers the form builder, the public filler endpoints and the
// per-form analytics.
type FormHandler struct {
	formService      *service.FormService
	analyticsService *service.AnalyticsService
}

// pageParam reads the ?p= page number; zero means absent/invalid.
func pageParam(c *gin.Context) int {
	p, err := strconv.Atoi(c.Query("p"))
	if err != nil {
		return 0
	}
	return p
}

func (h *FormHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	form, err := h.formService.Create(c.Request.Context(), userID, c.Param("workspaceId"), req.Title, req.Description, req.Theme)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Form created", form)
}

func (h *FormHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	forms, err := h.formService.ListByWorkspace(c.Request.Context(), userID, c.Param("workspaceId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if forms == nil {
		forms = []*repository.Form{}
	}

	respondSuccess(c, http.StatusOK, "Forms fetched", forms)
}

func (h *FormHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	err := h.formService.Delete(c.Request.Context(), userID, c.Param("workspaceId"), c.Param("formId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Form deleted", nil)
}

func (h *FormHandler) ToggleStatus(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	form, err := h.formService.ToggleStatus(c.Request.Context(), userID, c.Param("workspaceId"), c.Param("formId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Form status updated", form)
}

func (h *FormHandler) GetWithPage(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	page := pageParam(c)
	if page == 0 {
		page = 1
	}

	result, err := h.formService.GetWithPage(c.Request.Context(), userID, c.Param("workspaceId"), c.Param("formId"), page)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Form fetched", result)
}

func (h *FormHandler) UpdatePage(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	page := pageParam(c)
	if page < 1 {
		respondError(c, errBadPageQuery)
		return
	}

	var req models.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updated, err := h.formService.UpdatePage(c.Request.Context(), userID, c.Param("workspaceId"), c.Param("formId"), req.PageID, page, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Page updated", updated)
}

func (h *FormHandler) CreateNextPage(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	page := pageParam(c)
	if page < 1 {
		respondError(c, errBadPageQuery)
		return
	}

	created, err := h.formService.CreateNextPage(c.Request.Context(), userID, c.Param("workspaceId"), c.Param("formId"), page)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Page created", created)
}

func (h *FormHandler) GetResponses(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	result, err := h.formService.GetResponses(c.Request.Context(), userID, c.Param("workspaceId"), c.Param("formId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Submissions == nil {
		result.Submissions = []*repository.Submission{}
	}

	respondSuccess(c, http.StatusOK, "Responses fetched", result)
}

func (h *FormHandler) GetAnalytics(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.Fetch(c.Request.Context(), userID, c.Param("workspaceId"), c.Param("formId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Analytics fetched", report)
}

// Public endpoints, no auth.

func (h *FormHandler) GetPublished(c *gin.Context) {
	form, err := h.formService.GetPublished(c.Request.Context(), c.Param("formId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Form fetched", form)
}

func (h *FormHandler) Submit(c *gin.Context) {
	var req models.SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	submission, err := h.formService.Submit(c.Request.Context(), c.Param("formId"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Submission recorded", submission)
}

func (h *FormHandler) TrackVisit(c *gin.Context) {
	err := h.analyticsService.TrackVisit(c.Request.Context(), c.Param("formId"), c.GetHeader("User-Agent"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Visit recorded", nil)
}
