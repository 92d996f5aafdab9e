package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/jpsm83/restaurant-pos/pkg/app"
	"github.com/jpsm83/restaurant-pos/services/ordering/application/handlers"
	appsvcs "github.com/jpsm83/restaurant-pos/services/ordering/application/services"
)

// OrderingRoutes registers sales-instance and order endpoints on the provided
// chi router.
func OrderingRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	instances := handlers.NewSalesInstanceHandlers(svcs)
	orders := handlers.NewOrderHandlers(svcs)

	r.Group(func(r chi.Router) {
		r.Route("/sales-instances", func(r chi.Router) {
			r.Post("/", instances.Open)
			r.Get("/", instances.List)
			r.Get("/{id}", instances.GetByID)
			r.Get("/{id}/orders", instances.Orders)
			r.Post("/{id}/close", instances.Close)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orders.Create)
			r.Get("/{id}", orders.GetByID)
			r.Post("/{id}/void", orders.Void)
			r.Post("/{id}/pay", orders.MarkPaid)
		})
	})
}
