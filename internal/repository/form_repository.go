package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Form struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Theme       string    `json:"theme"`
	Status      bool      `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type FormPage struct {
	ID        string          `json:"id"`
	FormID    string          `json:"formId"`
	Page      int             `json:"page"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type FormRepository interface {
	// CreateWithFirstPage creates the form together with page 1 in a single
	// transaction; a form never exists without its first page.
	CreateWithFirstPage(ctx context.Context, form *Form) error
	FindByID(ctx context.Context, id string) (*Form, error)
	FindByWorkspace(ctx context.Context, workspaceID string) ([]*Form, error)
	SetStatus(ctx context.Context, id string, status bool) (*Form, error)
	Delete(ctx context.Context, id string) error

	FindPage(ctx context.Context, formID string, page int) (*FormPage, error)
	FindPages(ctx context.Context, formID string) ([]*FormPage, error)
	CountPages(ctx context.Context, formID string) (int, error)
	MaxPage(ctx context.Context, formID string) (int, error)
	UpdatePageContent(ctx context.Context, pageID, formID string, page int, content json.RawMessage) (*FormPage, error)
	// CreateNextPage relies on the (form_id, page) unique constraint to stay
	// race safe; a concurrent insert of the same number returns ErrDuplicate.
	CreateNextPage(ctx context.Context, formID string, page int) (*FormPage, error)
}

type pgFormRepository struct {
	pool *pgxpool.Pool
}

func NewFormRepository(pool *pgxpool.Pool) FormRepository {
	return &pgFormRepository{pool: pool}
}

func (r *pgFormRepository) CreateWithFirstPage(ctx context.Context, form *Form) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO forms (workspace_id, title, description, theme)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at, updated_at
	`
	if err := tx.QueryRow(ctx, query,
		form.WorkspaceID, form.Title, form.Description, form.Theme,
	).Scan(&form.ID, &form.Status, &form.CreatedAt, &form.UpdatedAt); err != nil {
		return err
	}

	pageQuery := `INSERT INTO form_pages (form_id, page, content) VALUES ($1, 1, NULL)`
	if _, err := tx.Exec(ctx, pageQuery, form.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgFormRepository) FindByID(ctx context.Context, id string) (*Form, error) {
	query := `
		SELECT id, workspace_id, title, description, theme, status, created_at, updated_at
		FROM forms WHERE id = $1
	`
	form := &Form{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&form.ID, &form.WorkspaceID, &form.Title, &form.Description,
		&form.Theme, &form.Status, &form.CreatedAt, &form.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return form, nil
}

func (r *pgFormRepository) FindByWorkspace(ctx context.Context, workspaceID string) ([]*Form, error) {
	query := `
		SELECT id, workspace_id, title, description, theme, status, created_at, updated_at
		FROM forms WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []*Form
	for rows.Next() {
		form := &Form{}
		if err := rows.Scan(
			&form.ID, &form.WorkspaceID, &form.Title, &form.Description,
			&form.Theme, &form.Status, &form.CreatedAt, &form.UpdatedAt,
		); err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

func (r *pgFormRepository) SetStatus(ctx context.Context, id string, status bool) (*Form, error) {
	query := `
		UPDATE forms SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, workspace_id, title, description, theme, status, created_at, updated_at
	`
	form := &Form{}
	err := r.pool.QueryRow(ctx, query, id, status).Scan(
		&form.ID, &form.WorkspaceID, &form.Title, &form.Description,
		&form.Theme, &form.Status, &form.CreatedAt, &form.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return form, nil
}

func (r *pgFormRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM forms WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *pgFormRepository) FindPage(ctx context.Context, formID string, page int) (*FormPage, error) {
	query := `
		SELECT id, form_id, page, content, created_at, updated_at
		FROM form_pages WHERE form_id = $1 AND page = $2
	`
	return scanFormPage(r.pool.QueryRow(ctx, query, formID, page))
}

func (r *pgFormRepository) FindPages(ctx context.Context, formID string) ([]*FormPage, error) {
	query := `
		SELECT id, form_id, page, content, created_at, updated_at
		FROM form_pages WHERE form_id = $1
		ORDER BY page ASC
	`
	rows, err := r.pool.Query(ctx, query, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*FormPage
	for rows.Next() {
		p := &FormPage{}
		if err := rows.Scan(&p.ID, &p.FormID, &p.Page, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (r *pgFormRepository) CountPages(ctx context.Context, formID string) (int, error) {
	query := `SELECT COUNT(*) FROM form_pages WHERE form_id = $1`
	var count int
	err := r.pool.QueryRow(ctx, query, formID).Scan(&count)
	return count, err
}

func (r *pgFormRepository) MaxPage(ctx context.Context, formID string) (int, error) {
	query := `SELECT COALESCE(MAX(page), 0) FROM form_pages WHERE form_id = $1`
	var max int
	err := r.pool.QueryRow(ctx, query, formID).Scan(&max)
	return max, err
}

func (r *pgFormRepository) UpdatePageContent(ctx context.Context, pageID, formID string, page int, content json.RawMessage) (*FormPage, error) {
	query := `
		UPDATE form_pages SET content = $4, updated_at = NOW()
		WHERE id = $1 AND form_id = $2 AND page = $3
		RETURNING id, form_id, page, content, created_at, updated_at
	`
	p, err := scanFormPage(r.pool.QueryRow(ctx, query, pageID, formID, page, content))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoRows
	}
	return p, nil
}

func (r *pgFormRepository) CreateNextPage(ctx context.Context, formID string, page int) (*FormPage, error) {
	query := `
		INSERT INTO form_pages (form_id, page, content)
		VALUES ($1, $2, NULL)
		RETURNING id, form_id, page, content, created_at, updated_at
	`
	p, err := scanFormPage(r.pool.QueryRow(ctx, query, formID, page))
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanFormPage(row pgx.Row) (*FormPage, error) {
	p := &FormPage{}
	err := row.Scan(&p.ID, &p.FormID, &p.Page, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
