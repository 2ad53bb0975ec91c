package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/tablepos/services/order/application/handlers"
	appsvcs "github.com/ghuser/tablepos/services/order/application/services"
)

// OrderRoutes registers session, order and occupancy endpoints on the
// provided chi router.
func OrderRoutes(r chi.Router, svcs *appsvcs.Services) {
	sessions := handlers.NewSessionHandler(svcs)
	orders := handlers.NewOrderHandler(svcs)

	r.Route("/api/sessions/{kind}/{slot}", func(r chi.Router) {
		r.Post("/", sessions.Open)
		r.Get("/", sessions.Get)
		r.Delete("/", sessions.Abandon)
		r.Post("/items", sessions.AddItem)
		r.Patch("/items/{entryID}", sessions.ChangeQuantity)
		r.Delete("/items/{entryID}", sessions.RemoveItem)
		r.Post("/commit", sessions.Commit)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", orders.List)
		r.Delete("/", orders.Clear)
		r.Get("/{id}", orders.Get)
		r.Delete("/{id}", orders.Discard)
		r.Post("/{id}/reopen", orders.Reopen)
		r.Post("/{id}/settle", orders.Settle)
	})

	r.Route("/api/occupancy", func(r chi.Router) {
		r.Post("/reconcile", orders.Reconcile)
		r.Get("/{kind}", orders.Occupancy)
	})
}
