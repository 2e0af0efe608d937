package invoice

import "time"

type Status string

const (
	// StatusPlaced is the only status this service ever creates; everything
	// after it is driven by order management or payment confirmation.
	StatusPlaced               Status = "placed"
	StatusAwaitingConfirmation Status = "awaiting_confirmation"
	StatusPaid                 Status = "paid"
	StatusShipped              Status = "shipped"
	StatusCompleted            Status = "completed"
	StatusCancelled            Status = "cancelled"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusAwaitingConfirmation, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

const (
	// PaymentCOD settles on delivery; the invoice needs no further payment step.
	PaymentCOD = "cod"
	// PaymentBankQR is the deferred QR-code transfer. Checkout still commits
	// as placed; the proof upload and confirmation arrive later.
	PaymentBankQR = "bank_qr"
)

// KnownPaymentMethod reports whether m is a payment method we accept.
func KnownPaymentMethod(m string) bool {
	return m == PaymentCOD || m == PaymentBankQR
}

// Item is one invoice line. UnitPrice is the cart-time price snapshot.
// Lines are immutable once the invoice is committed.
type Item struct {
	BookID    int64   `json:"bookId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type Invoice struct {
	ID              int64     `json:"invoiceId"`
	UserID          int64     `json:"userId"`
	Items           []Item    `json:"items"`
	TotalPrice      float64   `json:"totalPrice"`
	ShippingAddress string    `json:"shippingAddress"`
	PaymentMethod   string    `json:"paymentMethod"`
	Status          Status    `json:"status"`
	PaymentProof    string    `json:"paymentProof,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
