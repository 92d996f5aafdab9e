package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/jpsm83/restaurant-pos/pkg/app"
	"github.com/jpsm83/restaurant-pos/services/purchasing/application/handlers"
	appsvcs "github.com/jpsm83/restaurant-pos/services/purchasing/application/services"
)

// PurchasingRoutes registers purchase and supplier endpoints on the provided
// chi router.
func PurchasingRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	purchases := handlers.NewPurchaseHandlers(svcs)
	suppliers := handlers.NewSupplierHandlers(svcs)

	r.Group(func(r chi.Router) {
		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", purchases.Create)
			r.Get("/", purchases.List)
			r.Get("/{id}", purchases.GetByID)
		})
		r.Route("/suppliers", func(r chi.Router) {
			r.Post("/", suppliers.Create)
			r.Get("/", suppliers.List)
			r.Get("/{id}", suppliers.GetByID)
		})
	})
}
