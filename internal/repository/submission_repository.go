package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Submission struct {
	ID        string          `json:"id"`
	FormID    string          `json:"formId"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SubmissionRepository is append-only; submissions are never updated or
// deleted except by form/workspace cascade.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *Submission) error
	FindByForm(ctx context.Context, formID string) ([]*Submission, error)
	CountByForm(ctx context.Context, formID string) (int64, error)
}

type pgSubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &pgSubmissionRepository{pool: pool}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, submission *Submission) error {
	query := `
		INSERT INTO submissions (form_id, content)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, submission.FormID, submission.Content).
		Scan(&submission.ID, &submission.CreatedAt)
}

func (r *pgSubmissionRepository) FindByForm(ctx context.Context, formID string) ([]*Submission, error) {
	query := `
		SELECT id, form_id, content, created_at
		FROM submissions WHERE form_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []*Submission
	for rows.Next() {
		s := &Submission{}
		if err := rows.Scan(&s.ID, &s.FormID, &s.Content, &s.CreatedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (r *pgSubmissionRepository) CountByForm(ctx context.Context, formID string) (int64, error) {
	query := `SELECT COUNT(*) FROM submissions WHERE form_id = $1`
	var count int64
	err := r.pool.QueryRow(ctx, query, formID).Scan(&count)
	return count, err
}
