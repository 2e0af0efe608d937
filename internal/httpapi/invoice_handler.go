package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Hannie1812/bookstore-go/internal/invoice"
	"github.com/Hannie1812/bookstore-go/internal/user"
)

type InvoiceHandler struct {
	invoices invoice.Repository
	users    user.Repository
}

func NewInvoiceHandler(invoices invoice.Repository, users user.Repository) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, users: users}
}

func (h *InvoiceHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context(), h.users, w, r)
	if u == nil {
		return
	}

	orders, err := h.invoices.ListByUser(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	if orders == nil {
		orders = []invoice.Invoice{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *InvoiceHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context(), h.users, w, r)
	if u == nil {
		return
	}

	inv := h.loadOrder(w, r)
	if inv == nil {
		return
	}
	if inv.UserID != u.ID {
		writeError(w, http.StatusForbidden, "not your order")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

type paymentProofRequest struct {
	Proof string `json:"proof"`
}

// UploadPaymentProof attaches the transfer proof reference to an invoice and
// moves it to awaiting_confirmation. The actual file lives in an external
// store; only its reference passes through here.
func (h *InvoiceHandler) UploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context(), h.users, w, r)
	if u == nil {
		return
	}

	inv := h.loadOrder(w, r)
	if inv == nil {
		return
	}
	if inv.UserID != u.ID {
		writeError(w, http.StatusForbidden, "not your order")
		return
	}
	if inv.PaymentMethod != invoice.PaymentBankQR {
		writeError(w, http.StatusBadRequest, "order does not expect a payment proof")
		return
	}

	var req paymentProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Proof == "" {
		writeError(w, http.StatusBadRequest, "proof is required")
		return
	}

	if err := h.invoices.UpdatePaymentProof(r.Context(), inv.ID, req.Proof); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store proof")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus is the order-management hook; it never touches line items or
// stock, only the lifecycle column.
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	inv := h.loadOrder(w, r)
	if inv == nil {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	status := invoice.Status(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	if err := h.invoices.UpdateStatus(r.Context(), inv.ID, status); err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *InvoiceHandler) loadOrder(w http.ResponseWriter, r *http.Request) *invoice.Invoice {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid orderId")
		return nil
	}

	inv, err := h.invoices.GetByID(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return nil
	}
	if inv == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return nil
	}
	return inv
}
