package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/jpsm83/restaurant-pos/pkg/app"
	"github.com/jpsm83/restaurant-pos/services/inventory/application/handlers"
	appsvcs "github.com/jpsm83/restaurant-pos/services/inventory/application/services"
)

// InventoryRoutes registers inventory endpoints on the provided chi router.
func InventoryRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	h := handlers.NewInventoryHandlers(svcs)

	r.Group(func(r chi.Router) {
		r.Route("/inventories", func(r chi.Router) {
			r.Post("/", h.Open)
			r.Get("/", h.List)
			r.Get("/open", h.GetOpen)
			r.Post("/recount", h.Recount)
			r.Get("/{id}", h.GetByID)
			r.Patch("/{id}/counts", h.RecordCount)
			r.Post("/{id}/finalize", h.Finalize)
		})
	})
}
