package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/export"
	"github.com/streamforms/submission-exporter/internal/i18n"
	"github.com/streamforms/submission-exporter/internal/model"
	"github.com/streamforms/submission-exporter/internal/model/options"
	"github.com/streamforms/submission-exporter/internal/service"
)

func TestMain(m *testing.M) {
	if err := i18n.Load(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeFormService struct {
	forms map[int64]*model.Form
}

func (f *fakeFormService) GetForm(_ context.Context, id int64) (*model.Form, error) {
	if id <= 0 {
		return nil, errors.BadRequest("form.get.invalid_id", "form id is required")
	}
	form, ok := f.forms[id]
	if !ok {
		return nil, errors.NotFound("store.get_form.error", fmt.Sprintf("no form found for id=%d", id))
	}
	return form, nil
}

func (f *fakeFormService) ListForms(_ context.Context) ([]*model.FormOverview, error) {
	out := make([]*model.FormOverview, 0, len(f.forms))
	for _, form := range f.forms {
		out = append(out, &model.FormOverview{ID: form.ID, Slug: form.Slug, Title: form.Title})
	}
	return out, nil
}

type fakeSubmissionService struct {
	rows    []*model.Submission
	deleted int64
	err     error

	gotSearch   *options.SearchOptions
	gotExport   *options.ExportOptions
	gotDelete   *options.DeleteOptions
	gotCriteria model.FilterCriteria
}

func (f *fakeSubmissionService) ListPage(opts *options.SearchOptions, criteria model.FilterCriteria) (*model.SubmissionPage, error) {
	f.gotSearch, f.gotCriteria = opts, criteria
	if f.err != nil {
		return nil, f.err
	}
	return &model.SubmissionPage{
		Rows:  f.rows,
		Total: int64(len(f.rows)),
		Page:  opts.Page,
		Size:  opts.Size,
	}, nil
}

func (f *fakeSubmissionService) Export(opts *options.ExportOptions, criteria model.FilterCriteria) (*model.ExportResult, error) {
	f.gotExport, f.gotCriteria = opts, criteria
	if f.err != nil {
		return nil, f.err
	}
	return &model.ExportResult{
		Document: &model.ExportDocument{
			FileName:    export.FileName("contact", opts.Format),
			ContentType: opts.Format.ContentType(),
			Data:        []byte("doc-bytes"),
		},
		RowCount: int64(len(f.rows)),
	}, nil
}

func (f *fakeSubmissionService) Delete(opts *options.DeleteOptions) (int64, error) {
	f.gotDelete = opts
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func contactForm() *model.Form {
	return &model.Form{
		ID:    1,
		Slug:  "contact",
		Title: "Contact",
		Fields: []model.FormField{
			{Name: "name", Label: "Name"},
			{Name: "message", Label: "Message"},
		},
	}
}

func contactRows() []*model.Submission {
	return []*model.Submission{
		{
			ID:          3,
			FormID:      1,
			SubmittedAt: time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC),
			Values: model.FieldValues{
				{Name: "name", Values: []string{"Carol"}},
				{Name: "message", Values: []string{"hi"}},
			},
		},
		{
			ID:          2,
			FormID:      1,
			SubmittedAt: time.Date(2023, 2, 1, 12, 0, 0, 0, time.UTC),
			Values: model.FieldValues{
				{Name: "name", Values: []string{"Bob"}},
			},
		},
	}
}

func newTestRouter(t *testing.T, forms service.FormService, subs service.SubmissionService) *chi.Mux {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	formHandler, err := NewFormHandler(forms, log)
	require.NoError(t, err)
	subHandler, err := NewSubmissionHandler(forms, subs, log, options.DefaultPageSize)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/forms", formHandler.List)
		r.Route("/forms/{formID}", func(r chi.Router) {
			r.Get("/submissions", subHandler.List)
			r.Post("/submissions/delete", subHandler.Delete)
		})
	})
	return r
}

func serve(t *testing.T, router *chi.Mux, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListSubmissionsPage(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{1: contactForm()}}
	subs := &fakeSubmissionService{rows: contactRows()}
	router := newTestRouter(t, forms, subs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/1/submissions?date_from=2023-01-15&p=1", nil)
	rec := serve(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "contact", body.Form.Slug)
	assert.Equal(t, []string{"Submission date", "Name", "Message"}, body.Headings)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, int64(3), body.Rows[0].ID)
	assert.Equal(t, []string{"2023-03-01 12:00:00", "Carol", "hi"}, body.Rows[0].Cells)
	// Absent field renders as an empty cell.
	assert.Equal(t, []string{"2023-02-01 12:00:00", "Bob", ""}, body.Rows[1].Cells)

	assert.Equal(t, 1, body.Paging.Page)
	assert.EqualValues(t, 2, body.Paging.Total)
	assert.EqualValues(t, 1, body.Paging.Pages)

	// A fresh page always starts unselected.
	assert.False(t, body.Selection.SelectAllChecked)
	assert.False(t, body.Selection.BulkActionEnabled)
	assert.Equal(t, 2, body.Selection.VisibleCount)
	assert.Zero(t, body.Selection.SelectedCount)

	assert.Equal(t, "2023-01-15", body.Filter.DateFrom)
	assert.Empty(t, body.Filter.Problems)

	// The service saw the parsed criteria, not raw query strings.
	require.NotNil(t, subs.gotCriteria.DateFrom)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), *subs.gotCriteria.DateFrom)
	assert.Equal(t, 1, subs.gotSearch.Page)
	assert.Equal(t, options.DefaultPageSize, subs.gotSearch.Size)
}

func TestListSubmissionsPaging(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{1: contactForm()}}
	subs := &fakeSubmissionService{}
	router := newTestRouter(t, forms, subs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/1/submissions?p=3&page_size=10", nil)
	rec := serve(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, subs.gotSearch.Page)
	assert.Equal(t, 10, subs.gotSearch.Size)

	// Garbage paging input falls back to the defaults.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/forms/1/submissions?p=zero&page_size=-1", nil)
	rec = serve(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, subs.gotSearch.Page)
	assert.Equal(t, options.DefaultPageSize, subs.gotSearch.Size)
}

func TestListSubmissionsInvalidDate(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{1: contactForm()}}
	subs := &fakeSubmissionService{}
	router := newTestRouter(t, forms, subs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/1/submissions?date_from=yesterday&date_to=2023-03-01", nil)
	rec := serve(t, router, req)

	// Malformed dates never fail the listing; the date pair is dropped and
	// the problem is reported for the filter control.
	require.Equal(t, http.StatusOK, rec.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Enter a valid date.", body.Filter.Problems["date_from"])
	assert.Empty(t, body.Filter.DateFrom)
	assert.Empty(t, body.Filter.DateTo)

	assert.Nil(t, subs.gotCriteria.DateFrom)
	assert.Nil(t, subs.gotCriteria.DateTo)
}

func TestListSubmissionsUnknownForm(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{}}
	subs := &fakeSubmissionService{}
	router := newTestRouter(t, forms, subs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/42/submissions", nil)
	rec := serve(t, router, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "store.get_form.error", body["id"])
}

func TestExportDownload(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{1: contactForm()}}
	subs := &fakeSubmissionService{rows: contactRows()}
	router := newTestRouter(t, forms, subs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/1/submissions?action=CSV&date_from=2023-01-15", nil)
	rec := serve(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="contact-submissions.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "doc-bytes", rec.Body.String())

	require.NotNil(t, subs.gotExport)
	assert.Equal(t, export.FormatCSV, subs.gotExport.Format)
	assert.Equal(t, "Submission date", subs.gotExport.SubmitTimeLabel)
	require.NotNil(t, subs.gotCriteria.DateFrom)

	// Export resolves the whole filtered set; no paging options ever reach
	// the service on this path.
	assert.Nil(t, subs.gotSearch)
}

func TestExportUnknownActionIsListing(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{1: contactForm()}}
	subs := &fakeSubmissionService{}
	router := newTestRouter(t, forms, subs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/1/submissions?action=filter", nil)
	rec := serve(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Nil(t, subs.gotExport)
	assert.NotNil(t, subs.gotSearch)
}

func TestDeleteSelected(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{1: contactForm()}}
	subs := &fakeSubmissionService{deleted: 2}
	router := newTestRouter(t, forms, subs)

	form := url.Values{ParamSelect: {"3", "abc", "2", "3"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/1/submissions/delete",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := serve(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["deleted"])

	// Unparseable values are dropped, duplicates collapse, order holds.
	require.NotNil(t, subs.gotDelete)
	assert.EqualValues(t, 1, subs.gotDelete.FormID)
	assert.Equal(t, []int64{3, 2}, subs.gotDelete.IDs)
}

func TestDeleteRedirectsBrowsers(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{1: contactForm()}}
	subs := &fakeSubmissionService{deleted: 1}
	router := newTestRouter(t, forms, subs)

	form := url.Values{ParamSelect: {"3"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/1/submissions/delete",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(t, router, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/api/v1/forms/1/submissions", rec.Header().Get("Location"))
}

func TestDeleteEmptySelection(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{1: contactForm()}}
	subs := &fakeSubmissionService{}
	router := newTestRouter(t, forms, subs)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/1/submissions/delete", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := serve(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, subs.gotDelete)
	assert.Empty(t, subs.gotDelete.IDs)
}

func TestDeleteInvalidFormID(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{}}
	subs := &fakeSubmissionService{}
	router := newTestRouter(t, forms, subs)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/abc/submissions/delete", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(t, router, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, subs.gotDelete)
}

func TestFormsIndex(t *testing.T) {
	forms := &fakeFormService{forms: map[int64]*model.Form{1: contactForm()}}
	router := newTestRouter(t, forms, &fakeSubmissionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms", nil)
	rec := serve(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Forms []*model.FormOverview `json:"forms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Forms, 1)
	assert.Equal(t, "contact", body.Forms[0].Slug)
}
