package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/tablepos/services/menu/application/handlers"
	appsvcs "github.com/ghuser/tablepos/services/menu/application/services"
)

// MenuRoutes registers catalog endpoints on the provided chi router.
func MenuRoutes(r chi.Router, svcs *appsvcs.Services) {
	h := handlers.NewMenuHandler(svcs)
	r.Route("/api/menu", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}
