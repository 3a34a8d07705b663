package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/snaggle-market/snaggle/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса snaggle.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auctions", func(r chi.Router) {
			r.Get("/", h.ListAuctions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetAuction)
				r.Get("/countdown", h.GetCountdown)
				r.Get("/countdown/stream", h.StreamCountdown)
				r.Get("/quick-bid", h.QuickBid)
				r.Post("/bids/validate", h.ValidateBid)
				r.Post("/bids", h.PlaceBid)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/{id}", h.GetProduct)
		})

		r.Post("/pricing/quote", h.Quote)
		r.Post("/checkout", h.Checkout)

		r.Route("/drops", func(r chi.Router) {
			r.Get("/", h.ListDrops)
			r.Get("/{id}", h.GetDrop)
		})

		r.Get("/users/{id}", h.GetUser)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
