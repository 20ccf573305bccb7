package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	dberr "github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/model"
	"github.com/streamforms/submission-exporter/internal/store"
)

type Form struct {
	storage *Store
}

func (f *Form) Get(ctx context.Context, id int64) (*model.Form, error) {
	db, err := f.storage.Database()
	if err != nil {
		return nil, dberr.NewDBInternalError("get_form", err)
	}

	query := `
		SELECT id, slug, title, fields, created_at
		FROM streamforms.form
		WHERE id = $1
	`

	var form model.Form
	err = db.QueryRow(ctx, query, id).Scan(
		&form.ID,
		&form.Slug,
		&form.Title,
		&form.Fields,
		&form.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.NewDBNotFoundError("get_form",
				fmt.Sprintf("no form found for id=%d", id))
		}
		return nil, dberr.NewDBInternalError("get_form", err)
	}

	return &form, nil
}

func (f *Form) List(ctx context.Context) ([]*model.FormOverview, error) {
	db, err := f.storage.Database()
	if err != nil {
		return nil, dberr.NewDBInternalError("list_forms", err)
	}

	query := `
		SELECT f.id, f.slug, f.title, count(s.id) AS submission_count
		FROM streamforms.form f
		LEFT JOIN streamforms.submission s ON s.form_id = f.id
		GROUP BY f.id, f.slug, f.title
		ORDER BY f.title, f.id
	`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, dberr.NewDBInternalError("list_forms", err)
	}
	defer rows.Close()

	var forms []*model.FormOverview
	for rows.Next() {
		var overview model.FormOverview
		err := rows.Scan(
			&overview.ID,
			&overview.Slug,
			&overview.Title,
			&overview.SubmissionCount,
		)
		if err != nil {
			return nil, dberr.NewDBInternalError("list_forms", err)
		}
		forms = append(forms, &overview)
	}
	if err = rows.Err(); err != nil {
		return nil, dberr.NewDBInternalError("list_forms", err)
	}

	return forms, nil
}

func NewFormStore(store *Store) (store.FormStore, error) {
	if store == nil {
		return nil, dberr.NewDBInternalError("new_form_store", errors.New("store is nil"))
	}
	return &Form{storage: store}, nil
}
