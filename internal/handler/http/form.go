package http

import (
	"log/slog"
	"net/http"

	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/service"
)

// FormHandler serves the form index the admin UI uses to pick which
// form's submissions to manage.
type FormHandler struct {
	service service.FormService
	log     *slog.Logger
}

func NewFormHandler(service service.FormService, log *slog.Logger) (*FormHandler, error) {
	if service == nil {
		return nil, errors.Internal("FormService is nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &FormHandler{service: service, log: log}, nil
}

// List responds with every known form and its submission count.
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.service.ListForms(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": forms})
}
