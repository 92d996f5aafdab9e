package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/jpsm83/restaurant-pos/pkg/app"
	"github.com/jpsm83/restaurant-pos/services/catalog/application/handlers"
	appsvcs "github.com/jpsm83/restaurant-pos/services/catalog/application/services"
)

// CatalogRoutes registers supplier-good and business-good endpoints on the
// provided chi router.
func CatalogRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	supplier := handlers.NewSupplierGoodHandlers(svcs)
	business := handlers.NewBusinessGoodHandlers(svcs)

	r.Group(func(r chi.Router) {
		r.Route("/supplier-goods", func(r chi.Router) {
			r.Post("/", supplier.Create)
			r.Get("/", supplier.List)
			r.Get("/{id}", supplier.GetByID)
			r.Patch("/{id}", supplier.Update)
			r.Delete("/{id}", supplier.Delete)
		})
		r.Route("/business-goods", func(r chi.Router) {
			r.Post("/", business.Create)
			r.Get("/", business.List)
			r.Get("/{id}", business.GetByID)
			r.Get("/{id}/menu", business.MenuItem)
			r.Patch("/{id}", business.Update)
			r.Delete("/{id}", business.Delete)
		})
	})
}
