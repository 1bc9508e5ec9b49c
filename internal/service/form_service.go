package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

const publishedFormTTL = 5 * time.Minute

type FormService struct {
	formRepo       repository.FormRepository
	submissionRepo repository.SubmissionRepository
	permission     *PermissionService
	cache          FormCache
	broadcaster    Broadcaster
	media          MediaStore
}

func NewFormService(
	formRepo repository.FormRepository,
	submissionRepo repository.SubmissionRepository,
	permission *PermissionService,
	cache FormCache,
	broadcaster Broadcaster,
	media MediaStore,
) *FormService {
	return &FormService{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		permission:     permission,
		cache:          cache,
		broadcaster:    broadcaster,
		media:          media,
	}
}

// PublishedForm is the public payload served to form fillers.
type PublishedForm struct {
	Form  *repository.Form       `json:"form"`
	Pages []*repository.FormPage `json:"pages"`
}

// FormWithPage is the builder view: one page at a time plus the page count.
type FormWithPage struct {
	Form       *repository.Form     `json:"form"`
	Page       *repository.FormPage `json:"currentPage"`
	TotalPages int                  `json:"totalPages"`
}

func (s *FormService) Create(ctx context.Context, userID, workspaceID, title string, description *string, theme string) (*repository.Form, error) {
	if _, err := s.permission.Authorize(ctx, userID, workspaceID, types.ActionCreateForm); err != nil {
		return nil, err
	}
	if theme == "" {
		theme = types.ThemeBoxy
	}
	if !types.IsValidTheme(theme) {
		return nil, apperr.BadRequest("Theme must be BOXY or ROUNDED")
	}

	form := &repository.Form{
		WorkspaceID: workspaceID,
		Title:       title,
		Description: description,
		Theme:       theme,
	}
	if err := s.formRepo.CreateWithFirstPage(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *FormService) Delete(ctx context.Context, userID, workspaceID, formID string) error {
	if _, _, err := s.permission.AuthorizeForm(ctx, userID, workspaceID, formID, types.ActionDeleteForm); err != nil {
		return err
	}
	if err := s.formRepo.Delete(ctx, formID); err != nil {
		if err == repository.ErrNoRows {
			return apperr.NotFound("Form not found")
		}
		return err
	}
	s.invalidateCache(ctx, formID)

	// Remote uploads are tagged with the form id; clean them up best-effort.
	if s.media != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.media.DeleteByTag(ctx, formID); err != nil {
				log.Printf("[MEDIA] Failed to delete assets for form %s: %v", formID, err)
			}
		}()
	}
	return nil
}

func (s *FormService) ToggleStatus(ctx context.Context, userID, workspaceID, formID string) (*repository.Form, error) {
	_, form, err := s.permission.AuthorizeForm(ctx, userID, workspaceID, formID, types.ActionUpdateForm)
	if err != nil {
		return nil, err
	}
	updated, err := s.formRepo.SetStatus(ctx, formID, !form.Status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Form not found")
	}
	s.invalidateCache(ctx, formID)
	return updated, nil
}

func (s *FormService) GetWithPage(ctx context.Context, userID, workspaceID, formID string, page int) (*FormWithPage, error) {
	_, form, err := s.permission.AuthorizeForm(ctx, userID, workspaceID, formID, types.ActionRead)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, apperr.BadRequest("Page number must be positive")
	}

	current, err := s.formRepo.FindPage(ctx, formID, page)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFound("Page not found")
	}
	total, err := s.formRepo.CountPages(ctx, formID)
	if err != nil {
		return nil, err
	}
	return &FormWithPage{Form: form, Page: current, TotalPages: total}, nil
}

func (s *FormService) UpdatePage(ctx context.Context, userID, workspaceID, formID, pageID string, page int, content json.RawMessage) (*repository.FormPage, error) {
	if _, _, err := s.permission.AuthorizeForm(ctx, userID, workspaceID, formID, types.ActionUpdateForm); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, apperr.BadRequest("Page content is required")
	}

	updated, err := s.formRepo.UpdatePageContent(ctx, pageID, formID, page, content)
	if err != nil {
		if err == repository.ErrNoRows {
			return nil, apperr.NotFound("Page not found")
		}
		return nil, err
	}
	s.invalidateCache(ctx, formID)
	return updated, nil
}

// CreateNextPage appends page max+1, but only when the caller's view of the
// page count is current. A stale current page is a 400; losing the insert
// race to another editor is a 409.
func (s *FormService) CreateNextPage(ctx context.Context, userID, workspaceID, formID string, currentPage int) (*repository.FormPage, error) {
	if _, _, err := s.permission.AuthorizeForm(ctx, userID, workspaceID, formID, types.ActionUpdateForm); err != nil {
		return nil, err
	}

	max, err := s.formRepo.MaxPage(ctx, formID)
	if err != nil {
		return nil, err
	}
	if currentPage != max {
		return nil, apperr.BadRequest("Page number is out of date, reload the form")
	}

	created, err := s.formRepo.CreateNextPage(ctx, formID, max+1)
	if err != nil {
		if err == repository.ErrDuplicate {
			return nil, apperr.Conflict("The next page was already created")
		}
		return nil, err
	}
	s.invalidateCache(ctx, formID)
	return created, nil
}

func (s *FormService) ListByWorkspace(ctx context.Context, userID, workspaceID string) ([]*repository.Form, error) {
	if _, err := s.permission.Authorize(ctx, userID, workspaceID, types.ActionRead); err != nil {
		return nil, err
	}
	return s.formRepo.FindByWorkspace(ctx, workspaceID)
}

type FormResponses struct {
	Form        *repository.Form         `json:"form"`
	Submissions []*repository.Submission `json:"submissions"`
}

func (s *FormService) GetResponses(ctx context.Context, userID, workspaceID, formID string) (*FormResponses, error) {
	_, form, err := s.permission.AuthorizeForm(ctx, userID, workspaceID, formID, types.ActionRead)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissionRepo.FindByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	return &FormResponses{Form: form, Submissions: submissions}, nil
}

// GetPublished serves the public form payload, cache-first. Unpublished
// forms are forbidden even when the id is known.
func (s *FormService) GetPublished(ctx context.Context, formID string) (*PublishedForm, error) {
	if s.cache != nil {
		cached := &PublishedForm{}
		if ok, err := s.cache.Get(ctx, publishedFormKey(formID), cached); err == nil && ok {
			return cached, nil
		}
	}

	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, apperr.NotFound("Form not found")
	}
	if !form.Status {
		return nil, apperr.Forbidden("Form is not published")
	}

	pages, err := s.formRepo.FindPages(ctx, formID)
	if err != nil {
		return nil, err
	}
	payload := &PublishedForm{Form: form, Pages: pages}

	if s.cache != nil {
		if err := s.cache.Set(ctx, publishedFormKey(formID), payload, publishedFormTTL); err != nil {
			log.Printf("[CACHE] Failed to cache form %s: %v", formID, err)
		}
	}
	return payload, nil
}

// Submit appends a public submission to a published form and notifies the
// workspace dashboard.
func (s *FormService) Submit(ctx context.Context, formID string, content json.RawMessage) (*repository.Submission, error) {
	if len(content) == 0 {
		return nil, apperr.BadRequest("Submission content is required")
	}

	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, apperr.NotFound("Form not found")
	}
	if !form.Status {
		return nil, apperr.Forbidden("Form is not published")
	}

	submission := &repository.Submission{FormID: formID, Content: content}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToWorkspace(form.WorkspaceID, "submission:new", submission)
	}
	return submission, nil
}

func (s *FormService) invalidateCache(ctx context.Context, formID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, publishedFormKey(formID)); err != nil {
		log.Printf("[CACHE] Failed to invalidate form %s: %v", formID, err)
	}
}

func publishedFormKey(formID string) string {
	return "form:published:" + formID
}
