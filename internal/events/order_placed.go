package events

import "time"

const EventTypeOrderPlaced = "OrderPlaced"

type OrderLine struct {
	BookID    int64   `json:"bookId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderPlaced announces a committed invoice to downstream consumers
// (shipping, notifications, payment reconciliation).
type OrderPlaced struct {
	EventType     string      `json:"eventType"`
	EventID       string      `json:"eventId"`
	Sequence      int64       `json:"sequence"`
	InvoiceID     int64       `json:"invoiceId"`
	UserID        int64       `json:"userId"`
	TotalPrice    float64     `json:"totalPrice"`
	PaymentMethod string      `json:"paymentMethod"`
	Items         []OrderLine `json:"items"`
	OccurredAt    time.Time   `json:"occurredAt"`
}
