package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	ordercontroller "kalpa/internal/order/controller"
	tablecontroller "kalpa/internal/table/controller"
)

func NewRouter(orders *ordercontroller.OrderController, tables *tablecontroller.TableController, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orders.HandleCreateOrder)
			r.Get("/", orders.HandleListOrders)
			r.Get("/{orderId}", orders.HandleGetOrder)
			r.Post("/{orderId}/items", orders.HandleAddItem)
			r.Patch("/{orderId}/status", orders.HandleOrderStatusUpdate)
			r.Patch("/{orderId}/items/{itemId}/status", orders.HandleItemStatusUpdate)
			r.Post("/{orderId}/checkout", orders.HandleCheckout)
			r.Post("/{orderId}/cancel", orders.HandleCancelOrder)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Post("/", tables.HandleCreateTable)
			r.Get("/", tables.HandleListTables)
			r.Delete("/{tableId}", tables.HandleDeactivateTable)
		})
	})

	return r
}
