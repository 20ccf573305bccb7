package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/i18n"
	"github.com/streamforms/submission-exporter/internal/model"
)

// Query and form parameter names of the admin listing contract.
const (
	ParamAction   = "action"
	ParamPage     = "p"
	ParamPageSize = "page_size"
	ParamSelect   = "select-submission"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err in the AppError JSON shape, translated for the
// request's language, and logs it with the request id attached.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code := errors.Code(err)

	out := errors.New(errors.Details(err))
	out.SetStatusCode(code)
	var ided interface{ GetId() string }
	if errors.As(err, &ided) {
		out.Id = ided.GetId()
	}
	var parammed interface{ GetTranslationParams() map[string]any }
	if errors.As(err, &parammed) {
		out.SetTranslationParams(parammed.GetTranslationParams())
	}
	out.SetRequestId(chimw.GetReqID(r.Context()))
	out.Translate(i18n.TfuncFromRequest(r))

	if code >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "submission_exporter.http.request_failed",
			"error", errors.Details(err), "code", code, "path", r.URL.Path)
	} else {
		log.WarnContext(r.Context(), "submission_exporter.http.request_rejected",
			"error", errors.Details(err), "code", code, "path", r.URL.Path)
	}

	writeJSON(w, code, out)
}

// writeDownload streams an export document as a file attachment.
func writeDownload(w http.ResponseWriter, doc *model.ExportDocument) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

// wantsJSON reports whether the client asked for a JSON response instead of
// the browser-flow redirect.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
