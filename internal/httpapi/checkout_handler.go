package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Hannie1812/bookstore-go/internal/cart"
	"github.com/Hannie1812/bookstore-go/internal/checkout"
	"github.com/Hannie1812/bookstore-go/internal/invoice"
	"github.com/Hannie1812/bookstore-go/internal/stock"
	"github.com/Hannie1812/bookstore-go/internal/user"
)

// Checkouter is implemented by the checkout engine.
type Checkouter interface {
	Checkout(ctx context.Context, c *cart.Cart, userID int64, shippingAddress, paymentMethod string) (*invoice.Invoice, error)
}

type CheckoutHandler struct {
	engine Checkouter
	carts  *cart.Service
	users  user.Repository
}

func NewCheckoutHandler(engine Checkouter, carts *cart.Service, users user.Repository) *CheckoutHandler {
	return &CheckoutHandler{engine: engine, carts: carts, users: users}
}

type checkoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

// Checkout converts the session cart into a committed invoice. Expected
// outcomes (empty cart, insufficient stock) come back as structured JSON;
// conflicts that outlived the retry budget ask the user to try again.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context(), h.users, w, r)
	if u == nil {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if !invoice.KnownPaymentMethod(req.PaymentMethod) {
		writeError(w, http.StatusBadRequest, "unknown payment method")
		return
	}

	// Fall back to the address on file, like the original checkout form did.
	shippingAddress := req.ShippingAddress
	if shippingAddress == "" {
		shippingAddress = u.Address
	}
	if shippingAddress == "" {
		writeError(w, http.StatusBadRequest, "shippingAddress is required")
		return
	}

	c := h.carts.Cart(sessionID(r))
	inv, err := h.engine.Checkout(r.Context(), c, u.ID, shippingAddress, req.PaymentMethod)
	if err != nil {
		var insufficient *stock.InsufficientError
		var notFound *checkout.BookNotFoundError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "cart is empty")
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":     "insufficient stock",
				"bookId":    insufficient.BookID,
				"available": insufficient.Available,
			})
		case errors.As(err, &notFound):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "book no longer available",
				"bookId": notFound.BookID,
			})
		case errors.Is(err, checkout.ErrConflict):
			writeError(w, http.StatusServiceUnavailable, "please try again")
		default:
			writeError(w, http.StatusInternalServerError, "checkout failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, inv)
}

// currentUser resolves the X-User header against the user store. Writing the
// error response here keeps the handlers short; a nil return means the
// response has already been sent.
func currentUser(ctx context.Context, users user.Repository, w http.ResponseWriter, r *http.Request) *user.User {
	username := r.Header.Get("X-User")
	if username == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User header")
		return nil
	}
	u, err := users.GetByUsername(ctx, username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return nil
	}
	return u
}
