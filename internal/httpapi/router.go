package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(books *CatalogHandler, carts *CartHandler, checkouts *CheckoutHandler, orders *InvoiceHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(WithSession)

	r.Get("/health", books.Health)

	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", books.ListBooks)
		r.Post("/", books.CreateBook)
		r.Post("/restock", books.Restock)
		r.Get("/{bookId}", books.GetBook)
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", carts.GetCart)
		r.Delete("/", carts.ClearCart)
		r.Post("/items", carts.AddItem)
		r.Put("/items/{bookId}", carts.UpdateItem)
		r.Delete("/items/{bookId}", carts.RemoveItem)
	})

	r.Post("/api/checkout", checkouts.Checkout)

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", orders.ListOrders)
		r.Get("/{orderId}", orders.GetOrder)
		r.Post("/{orderId}/payment-proof", orders.UploadPaymentProof)
		r.Post("/{orderId}/status", orders.UpdateStatus)
	})

	return r
}
