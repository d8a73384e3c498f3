package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries what the router needs beyond the handler.
type RouterConfig struct {
	Logger      *slog.Logger
	Tokens      TokenValidator
	CORSOrigins []string
	Metrics     http.Handler
}

// NewRouter builds the chi router for the issuance API.
func NewRouter(h *LedgerHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(Logger(cfg.Logger))
	}
	r.Use(CORS(cfg.CORSOrigins))

	r.Get("/health", HealthCheck)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(cfg.Tokens))

		r.Route("/editions", func(r chi.Router) {
			r.Get("/", h.ListEditions)
			r.Post("/", h.CreateEdition)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEdition)
				r.Put("/price", h.SetPrice)
				r.Get("/notifications", h.History)
				r.Post("/reservations", h.BuyBatch)
				r.Post("/reservations/on-behalf", h.BuyBatchOnBehalf)
				r.Get("/reservations/{purchaser}", h.GetReservation)
				r.Post("/batches", h.MintBatch)
				r.Post("/fulfillments", h.FulfillBatch)
				r.Post("/purchases", h.PurchaseBatch)
			})
		})

		r.Get("/cards/{id}", h.GetCard)

		r.Get("/treasury", h.Treasury)
		r.Get("/treasury/refunds/{account}", h.Refund)
		r.Post("/treasury/withdrawals", h.Withdraw)
	})

	return r
}
