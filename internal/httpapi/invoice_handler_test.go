package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hannie1812/bookstore-go/internal/invoice"
)

func TestListOrders(t *testing.T) {
	f := newFixtures()
	alice := f.addUser("alice", "12 Elm St")
	bob := f.addUser("bob", "99 Oak Ave")
	f.invoices.invoices[1] = &invoice.Invoice{ID: 1, UserID: alice.ID}
	f.invoices.invoices[2] = &invoice.Invoice{ID: 2, UserID: bob.ID}
	f.invoices.invoices[3] = &invoice.Invoice{ID: 3, UserID: alice.ID}

	rec := f.do(t, request{method: http.MethodGet, path: "/api/orders", user: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)

	orders := decodeJSON[[]invoice.Invoice](t, rec)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(1), orders[0].ID)
	assert.Equal(t, int64(3), orders[1].ID)
}

func TestListOrdersEmpty(t *testing.T) {
	f := newFixtures()
	f.addUser("alice", "12 Elm St")

	rec := f.do(t, request{method: http.MethodGet, path: "/api/orders", user: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetOrderOwnership(t *testing.T) {
	f := newFixtures()
	alice := f.addUser("alice", "12 Elm St")
	f.addUser("bob", "99 Oak Ave")
	f.invoices.invoices[1] = &invoice.Invoice{ID: 1, UserID: alice.ID, Status: invoice.StatusPlaced}

	rec := f.do(t, request{method: http.MethodGet, path: "/api/orders/1", user: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	inv := decodeJSON[invoice.Invoice](t, rec)
	assert.Equal(t, invoice.StatusPlaced, inv.Status)

	rec = f.do(t, request{method: http.MethodGet, path: "/api/orders/1", user: "bob"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, request{method: http.MethodGet, path: "/api/orders/9", user: "alice"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadPaymentProof(t *testing.T) {
	f := newFixtures()
	alice := f.addUser("alice", "12 Elm St")
	f.invoices.invoices[1] = &invoice.Invoice{ID: 1, UserID: alice.ID,
		PaymentMethod: invoice.PaymentBankQR, Status: invoice.StatusPlaced}

	rec := f.do(t, request{method: http.MethodPost, path: "/api/orders/1/payment-proof", user: "alice",
		body: map[string]any{"proof": "receipts/1.jpg"}})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "receipts/1.jpg", f.invoices.proofs[1])
	assert.Equal(t, invoice.StatusAwaitingConfirmation, f.invoices.statuses[1])
}

func TestUploadPaymentProofRejectsCOD(t *testing.T) {
	f := newFixtures()
	alice := f.addUser("alice", "12 Elm St")
	f.invoices.invoices[1] = &invoice.Invoice{ID: 1, UserID: alice.ID,
		PaymentMethod: invoice.PaymentCOD, Status: invoice.StatusPlaced}

	rec := f.do(t, request{method: http.MethodPost, path: "/api/orders/1/payment-proof", user: "alice",
		body: map[string]any{"proof": "receipts/1.jpg"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.invoices.proofs)
}

func TestUploadPaymentProofRequiresProof(t *testing.T) {
	f := newFixtures()
	alice := f.addUser("alice", "12 Elm St")
	f.invoices.invoices[1] = &invoice.Invoice{ID: 1, UserID: alice.ID,
		PaymentMethod: invoice.PaymentBankQR, Status: invoice.StatusPlaced}

	rec := f.do(t, request{method: http.MethodPost, path: "/api/orders/1/payment-proof", user: "alice",
		body: map[string]any{"proof": ""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPaymentProofForeignOrder(t *testing.T) {
	f := newFixtures()
	alice := f.addUser("alice", "12 Elm St")
	f.addUser("bob", "99 Oak Ave")
	f.invoices.invoices[1] = &invoice.Invoice{ID: 1, UserID: alice.ID,
		PaymentMethod: invoice.PaymentBankQR, Status: invoice.StatusPlaced}

	rec := f.do(t, request{method: http.MethodPost, path: "/api/orders/1/payment-proof", user: "bob",
		body: map[string]any{"proof": "receipts/1.jpg"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.invoices.proofs)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixtures()
	alice := f.addUser("alice", "12 Elm St")
	f.invoices.invoices[1] = &invoice.Invoice{ID: 1, UserID: alice.ID, Status: invoice.StatusPaid}

	rec := f.do(t, request{method: http.MethodPost, path: "/api/orders/1/status",
		body: map[string]any{"status": "shipped"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, invoice.StatusShipped, f.invoices.statuses[1])
}

func TestUpdateOrderStatusUnknown(t *testing.T) {
	f := newFixtures()
	alice := f.addUser("alice", "12 Elm St")
	f.invoices.invoices[1] = &invoice.Invoice{ID: 1, UserID: alice.ID, Status: invoice.StatusPlaced}

	rec := f.do(t, request{method: http.MethodPost, path: "/api/orders/1/status",
		body: map[string]any{"status": "teleported"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.invoices.statuses)
}

func TestUpdateOrderStatusMissingOrder(t *testing.T) {
	f := newFixtures()

	rec := f.do(t, request{method: http.MethodPost, path: "/api/orders/9/status",
		body: map[string]any{"status": "shipped"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
