package service

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

var mobileUserAgent = regexp.MustCompile(`(?i)mobile|android|iphone|ipad|phone`)

type AnalyticsService struct {
	analyticsRepo  repository.AnalyticsRepository
	submissionRepo repository.SubmissionRepository
	formRepo       repository.FormRepository
	permission     *PermissionService
	broadcaster    Broadcaster
}

func NewAnalyticsService(
	analyticsRepo repository.AnalyticsRepository,
	submissionRepo repository.SubmissionRepository,
	formRepo repository.FormRepository,
	permission *PermissionService,
	broadcaster Broadcaster,
) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo:  analyticsRepo,
		submissionRepo: submissionRepo,
		formRepo:       formRepo,
		permission:     permission,
		broadcaster:    broadcaster,
	}
}

// Report is the per-form analytics payload. ConversionRate is
// submissions/visits as a percentage with two decimal places.
type Report struct {
	TotalVisits      int64  `json:"totalVisits"`
	MobileVisits     int64  `json:"mobileVisits"`
	DesktopVisits    int64  `json:"desktopVisits"`
	TotalSubmissions int64  `json:"totalSubmissions"`
	ConversionRate   string `json:"conversionRate"`
}

// ClassifyDevice buckets a User-Agent into mobile or desktop.
func ClassifyDevice(userAgent string) types.DeviceType {
	if mobileUserAgent.MatchString(userAgent) {
		return types.DeviceMobile
	}
	return types.DeviceDesktop
}

// TrackVisit records a public visit against an existing form and pushes a
// live counter update to the workspace dashboard.
func (s *AnalyticsService) TrackVisit(ctx context.Context, formID, userAgent string) error {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return err
	}
	if form == nil {
		return apperr.NotFound("Form not found")
	}

	device := ClassifyDevice(userAgent)
	if err := s.analyticsRepo.TrackVisit(ctx, formID, device); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToWorkspace(form.WorkspaceID, "visit:new", map[string]interface{}{
			"formId":     formID,
			"deviceType": device,
		})
	}
	return nil
}

// Fetch builds the analytics report for workspace members. 404 until the
// form has recorded at least one visit.
func (s *AnalyticsService) Fetch(ctx context.Context, userID, workspaceID, formID string) (*Report, error) {
	if _, _, err := s.permission.AuthorizeForm(ctx, userID, workspaceID, formID, types.ActionRead); err != nil {
		return nil, err
	}

	summary, err := s.analyticsRepo.GetSummary(ctx, formID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, apperr.NotFound("No analytics recorded for this form")
	}

	submissions, err := s.submissionRepo.CountByForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	return &Report{
		TotalVisits:      summary.TotalVisits,
		MobileVisits:     summary.MobileVisits,
		DesktopVisits:    summary.DesktopVisits,
		TotalSubmissions: submissions,
		ConversionRate:   ConversionRate(submissions, summary.TotalVisits),
	}, nil
}

// ConversionRate formats submissions/visits*100 with two decimal places.
// Zero visits yields "0.00" rather than a division error.
func ConversionRate(submissions, visits int64) string {
	if visits == 0 {
		return decimal.Zero.StringFixed(2)
	}
	rate := decimal.NewFromInt(submissions).
		Div(decimal.NewFromInt(visits)).
		Mul(decimal.NewFromInt(100))
	return rate.StringFixed(2)
}

// Reconcile recomputes every summary from the raw visit log. Called by the
// nightly job.
func (s *AnalyticsService) Reconcile(ctx context.Context) (int64, error) {
	return s.analyticsRepo.ReconcileSummaries(ctx)
}
