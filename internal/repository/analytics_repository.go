package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/formloom/formloom-backend/internal/types"
)

type FormVisit struct {
	ID         string           `db:"id"`
	FormID     string           `db:"form_id"`
	DeviceType types.DeviceType `db:"device_type"`
	CreatedAt  time.Time        `db:"created_at"`
}

type AnalyticsSummary struct {
	FormID        string    `db:"form_id" json:"formId"`
	TotalVisits   int64     `db:"total_visits" json:"totalVisits"`
	MobileVisits  int64     `db:"mobile_visits" json:"mobileVisits"`
	DesktopVisits int64     `db:"desktop_visits" json:"desktopVisits"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type AnalyticsRepository interface {
	// TrackVisit appends the raw visit and bumps the per-form summary in one
	// transaction so counters never drift from the event log.
	TrackVisit(ctx context.Context, formID string, device types.DeviceType) error
	GetSummary(ctx context.Context, formID string) (*AnalyticsSummary, error)
	// ReconcileSummaries recomputes every summary from the raw visit rows.
	// Run from the nightly job as a safety net against manual edits.
	ReconcileSummaries(ctx context.Context) (int64, error)
}

type sqlxAnalyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &sqlxAnalyticsRepository{db: db}
}

func (r *sqlxAnalyticsRepository) TrackVisit(ctx context.Context, formID string, device types.DeviceType) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `INSERT INTO form_visits (form_id, device_type) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, insert, formID, device); err != nil {
		return err
	}

	mobile := 0
	desktop := 0
	if device == types.DeviceMobile {
		mobile = 1
	} else {
		desktop = 1
	}
	upsert := `
		INSERT INTO form_analytics_summaries (form_id, total_visits, mobile_visits, desktop_visits, updated_at)
		VALUES ($1, 1, $2, $3, NOW())
		ON CONFLICT (form_id) DO UPDATE SET
			total_visits   = form_analytics_summaries.total_visits + 1,
			mobile_visits  = form_analytics_summaries.mobile_visits + EXCLUDED.mobile_visits,
			desktop_visits = form_analytics_summaries.desktop_visits + EXCLUDED.desktop_visits,
			updated_at     = NOW()
	`
	if _, err := tx.ExecContext(ctx, upsert, formID, mobile, desktop); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *sqlxAnalyticsRepository) GetSummary(ctx context.Context, formID string) (*AnalyticsSummary, error) {
	query := `
		SELECT form_id, total_visits, mobile_visits, desktop_visits, updated_at
		FROM form_analytics_summaries WHERE form_id = $1
	`
	summary := &AnalyticsSummary{}
	err := r.db.GetContext(ctx, summary, query, formID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *sqlxAnalyticsRepository) ReconcileSummaries(ctx context.Context) (int64, error) {
	query := `
		INSERT INTO form_analytics_summaries (form_id, total_visits, mobile_visits, desktop_visits, updated_at)
		SELECT form_id,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE device_type = $1),
		       COUNT(*) FILTER (WHERE device_type = $2),
		       NOW()
		FROM form_visits
		GROUP BY form_id
		ON CONFLICT (form_id) DO UPDATE SET
			total_visits   = EXCLUDED.total_visits,
			mobile_visits  = EXCLUDED.mobile_visits,
			desktop_visits = EXCLUDED.desktop_visits,
			updated_at     = NOW()
	`
	result, err := r.db.ExecContext(ctx, query, types.DeviceMobile, types.DeviceDesktop)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
