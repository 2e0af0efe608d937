package events

import "time"

const EventTypePaymentConfirmed = "PaymentConfirmed"

// PaymentConfirmed arrives from the payment reconciliation side once a
// deferred transfer has been verified against its uploaded proof.
type PaymentConfirmed struct {
	EventType  string    `json:"eventType"`
	EventID    string    `json:"eventId"`
	Sequence   int64     `json:"sequence"`
	InvoiceID  int64     `json:"invoiceId"`
	Proof      string    `json:"proof,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
