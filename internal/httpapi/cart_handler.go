package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Hannie1812/bookstore-go/internal/cart"
	"github.com/Hannie1812/bookstore-go/internal/catalog"
	"github.com/Hannie1812/bookstore-go/internal/stock"
)

type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartResponse struct {
	Items         []cart.Item `json:"items"`
	TotalQuantity int         `json:"totalQuantity"`
	TotalPrice    float64     `json:"totalPrice"`
}

func (h *CartHandler) cartJSON(c *cart.Cart) cartResponse {
	items := c.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return cartResponse{
		Items:         items,
		TotalQuantity: c.TotalQuantity(),
		TotalPrice:    c.TotalPrice(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Cart(sessionID(r))
	writeJSON(w, http.StatusOK, h.cartJSON(c))
}

type addItemRequest struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.BookID <= 0 || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "bookId and quantity are required")
		return
	}

	sid := sessionID(r)
	if err := h.carts.AddItem(r.Context(), sid, req.BookID, req.Quantity); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, h.cartJSON(h.carts.Cart(sid)))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bookId")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	sid := sessionID(r)
	if err := h.carts.UpdateQuantity(r.Context(), sid, bookID, req.Quantity); err != nil {
		var insufficient *stock.InsufficientError
		switch {
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":     "insufficient stock",
				"bookId":    insufficient.BookID,
				"available": insufficient.Available,
			})
		case errors.Is(err, cart.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "item not in cart")
		case errors.Is(err, stock.ErrNotFound):
			writeError(w, http.StatusNotFound, "book no longer available")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, h.cartJSON(h.carts.Cart(sid)))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bookId")
		return
	}

	sid := sessionID(r)
	h.carts.RemoveItem(sid, bookID)
	writeJSON(w, http.StatusOK, h.cartJSON(h.carts.Cart(sid)))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	h.carts.Clear(sid)
	writeJSON(w, http.StatusOK, h.cartJSON(h.carts.Cart(sid)))
}
