package app

import (
	"log"

	"github.com/go-chi/chi/v5"

	handler "github.com/streamforms/submission-exporter/internal/handler/http"
)

// routeRegistration holds information for initializing and mounting an HTTP handler.
type routeRegistration struct {
	init  func(*App) (any, error) // Initialization function for *App
	mount func(chi.Router, any)   // Mounting function for the router
	name  string                  // Handler name for logging
}

// RegisterRoutes initializes all handlers and mounts them under /api/v1.
func RegisterRoutes(mux *chi.Mux, appInstance *App) {
	routes := []routeRegistration{
		{
			init: func(a *App) (any, error) {
				return handler.NewFormHandler(a.FormService, a.log)
			},
			mount: func(r chi.Router, h any) {
				fh := h.(*handler.FormHandler)
				r.Get("/forms", fh.List)
			},
			name: "Form",
		},
		{
			init: func(a *App) (any, error) {
				return handler.NewSubmissionHandler(a.FormService, a.SubmissionService, a.log, a.Config.Export.PageSize)
			},
			mount: func(r chi.Router, h any) {
				sh := h.(*handler.SubmissionHandler)
				r.Get("/forms/{formID}/submissions", sh.List)
				r.Post("/forms/{formID}/submissions/delete", sh.Delete)
			},
			name: "Submission",
		},
	}

	// Initialize and mount each handler
	mux.Route("/api/v1", func(r chi.Router) {
		for _, route := range routes {
			h, err := route.init(appInstance)
			if err != nil {
				log.Printf("Error initializing %s handler: %v", route.name, err)

				continue
			}
			route.mount(r, h)
			log.Printf("%s handler registered successfully", route.name)
		}
	})
}
