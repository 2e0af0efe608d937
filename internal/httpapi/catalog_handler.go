package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Hannie1812/bookstore-go/internal/catalog"
	"github.com/Hannie1812/bookstore-go/internal/stock"
)

type CatalogHandler struct {
	books catalog.Repository
	stock stock.Repository
}

func NewCatalogHandler(books catalog.Repository, stockRepo stock.Repository) *CatalogHandler {
	return &CatalogHandler{books: books, stock: stockRepo}
}

func (h *CatalogHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	p, err := h.books.List(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p.Books == nil {
		p.Books = []catalog.Book{}
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bookId")
		return
	}

	b, err := h.books.Get(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type createBookRequest struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (h *CatalogHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.Title == "" || req.Price < 0 || req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	b := catalog.Book{Title: req.Title, Author: req.Author, Price: req.Price, Quantity: req.Quantity}
	if err := h.books.Create(r.Context(), &b); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

type restockRequest struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

// Restock sets a book's on-hand quantity outright, the admin-side knob.
func (h *CatalogHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.BookID <= 0 || req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	if err := h.stock.SetQuantity(r.Context(), req.BookID, req.Quantity); err != nil {
		if errors.Is(err, stock.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
