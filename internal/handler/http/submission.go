package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	goi18n "github.com/nicksnyder/go-i18n/i18n"

	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/export"
	"github.com/streamforms/submission-exporter/internal/i18n"
	"github.com/streamforms/submission-exporter/internal/model"
	"github.com/streamforms/submission-exporter/internal/model/options"
	"github.com/streamforms/submission-exporter/internal/selection"
	"github.com/streamforms/submission-exporter/internal/service"
)

// SubmissionHandler serves the submission listing of one form, the export
// downloads and the bulk delete.
type SubmissionHandler struct {
	forms       service.FormService
	submissions service.SubmissionService
	log         *slog.Logger
	pageSize    int
}

func NewSubmissionHandler(
	forms service.FormService,
	submissions service.SubmissionService,
	log *slog.Logger,
	pageSize int,
) (*SubmissionHandler, error) {
	if forms == nil || submissions == nil {
		return nil, errors.Internal("FormService or SubmissionService is nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = options.DefaultPageSize
	}
	return &SubmissionHandler{
		forms:       forms,
		submissions: submissions,
		log:         log,
		pageSize:    pageSize,
	}, nil
}

// listResponse is the JSON page the admin listing renders from.
type listResponse struct {
	Form      formInfo       `json:"form"`
	Headings  []string       `json:"headings"`
	Rows      []listRow      `json:"rows"`
	Paging    paging         `json:"paging"`
	Filter    filterEcho     `json:"filter"`
	Selection selection.View `json:"selection"`
}

type formInfo struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// listRow is one submission row: the id the select-submission checkbox
// posts, plus one cell per heading.
type listRow struct {
	ID          int64     `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Cells       []string  `json:"cells"`
}

type paging struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// filterEcho returns the criteria as understood by the service, with any
// input problems translated for display next to the filter controls.
type filterEcho struct {
	DateFrom string                 `json:"date_from,omitempty"`
	DateTo   string                 `json:"date_to,omitempty"`
	Fields   []model.FieldPredicate `json:"fields,omitempty"`
	Problems map[string]string      `json:"problems,omitempty"`
}

// List handles GET /forms/{formID}/submissions. The action query parameter
// discriminates: a recognized export format streams a file download, anything
// else renders the filtered, paginated listing page.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID := formIDFromRequest(r)

	query := r.URL.Query()
	criteria, problems := model.ParseFilterCriteria(query)
	T := i18n.TfuncFromRequest(r)
	label := i18n.SubmitTimeHeading(T)

	if format, ok := export.ParseFormat(query.Get(ParamAction)); ok {
		res, err := h.submissions.Export(options.NewExportOptions(ctx, formID, format, label), criteria)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		writeDownload(w, res.Document)
		return
	}

	form, err := h.forms.GetForm(ctx, formID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	opts := options.NewSearchOptions(ctx, formID, pageFromQuery(query), sizeFromQuery(query, h.pageSize))
	page, err := h.submissions.ListPage(opts, criteria)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, buildListResponse(form, page, criteria, problems, label, T))
}

// Delete handles POST /forms/{formID}/submissions/delete. Selected ids
// arrive as select-submission checkbox values; values that do not parse are
// dropped the same way stale ids are. Browsers get a redirect back to the
// listing, API clients asking for JSON get the deleted count.
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	formID := formIDFromRequest(r)
	if formID <= 0 {
		writeError(w, r, h.log, errors.BadRequest("form.get.invalid_id", "form id is required"))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, r, h.log, errors.BadRequest("submission.delete.invalid_body", err.Error()))
		return
	}

	deleted, err := h.submissions.Delete(options.NewDeleteOptions(r.Context(), formID, parseSelection(r.Form[ParamSelect])))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/api/v1/forms/%d/submissions", formID), http.StatusSeeOther)
}

func formIDFromRequest(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "formID"), 10, 64)
	return id
}

func pageFromQuery(query url.Values) int {
	page, err := strconv.Atoi(query.Get(ParamPage))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func sizeFromQuery(query url.Values, fallback int) int {
	size, err := strconv.Atoi(query.Get(ParamPageSize))
	if err != nil || size <= 0 {
		return fallback
	}
	return size
}

// parseSelection turns posted checkbox values into submission ids; values
// that do not parse are skipped silently.
func parseSelection(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func buildListResponse(
	form *model.Form,
	page *model.SubmissionPage,
	criteria model.FilterCriteria,
	problems model.FilterProblems,
	label string,
	T goi18n.TranslateFunc,
) listResponse {
	cols := export.Columns(form, page.Rows, label)

	rows := make([]listRow, 0, len(page.Rows))
	ids := make([]int64, 0, len(page.Rows))
	for _, sub := range page.Rows {
		rows = append(rows, listRow{
			ID:          sub.ID,
			SubmittedAt: sub.SubmittedAt.UTC(),
			Cells:       export.Row(cols, sub),
		})
		ids = append(ids, sub.ID)
	}

	// The fresh page starts with nothing selected; the client seeds its
	// selection reducer from this view.
	sel := selection.Reduce(selection.State{}, selection.PageLoaded{IDs: ids})

	return listResponse{
		Form:     formInfo{ID: form.ID, Slug: form.Slug, Title: form.Title},
		Headings: export.Headings(cols),
		Rows:     rows,
		Paging: paging{
			Page:  page.Page,
			Size:  page.Size,
			Total: page.Total,
			Pages: page.Pages(),
		},
		Filter:    echoFilter(criteria, problems, T),
		Selection: selection.Project(sel),
	}
}

func echoFilter(criteria model.FilterCriteria, problems model.FilterProblems, T goi18n.TranslateFunc) filterEcho {
	echo := filterEcho{Fields: criteria.Fields}
	if criteria.DateFrom != nil {
		echo.DateFrom = criteria.DateFrom.Format(model.DateInputFormat)
	}
	if criteria.DateTo != nil {
		echo.DateTo = criteria.DateTo.Format(model.DateInputFormat)
	}
	if len(problems) > 0 {
		echo.Problems = make(map[string]string, len(problems))
		for name, id := range problems {
			echo.Problems[name] = T(id)
		}
	}
	return echo
}
