package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Products  *ProductHandler
	Cart      *CartHandler
	Checkout  *CheckoutHandler
	SavedCart *SavedCartHandler
}

type RouterConfig struct {
	JWTSecret          []byte
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter wires the API routes behind the global middleware chain. /health is left unauthenticated.
func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))

		r.Get("/products", h.Products.GetProducts)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
			r.Put("/customer", h.Cart.SelectCustomer)
		})

		r.Post("/checkout", h.Checkout.Submit)

		r.Route("/saved-cart", func(r chi.Router) {
			r.Get("/", h.SavedCart.Get)
			r.Post("/", h.SavedCart.Save)
			r.Delete("/", h.SavedCart.Delete)
			r.Post("/restore", h.SavedCart.Restore)
		})
	})

	return otelhttp.NewHandler(r, "orderdesk")
}
