package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Hannie1812/bookstore-go/internal/invoice"
	"github.com/Hannie1812/bookstore-go/internal/sequence"
)

// Publisher emits OrderPlaced events. It satisfies checkout.Notifier.
type Publisher struct {
	ch      *amqp.Channel
	seqRepo sequence.Repository
}

func NewPublisher(conn *amqp.Connection, seqRepo sequence.Repository) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return &Publisher{ch: ch, seqRepo: seqRepo}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// InvoicePlaced publishes the committed invoice. It runs after commit, so a
// publish failure never undoes the order; the caller just logs it.
func (p *Publisher) InvoicePlaced(ctx context.Context, inv *invoice.Invoice) error {
	seq, err := p.seqRepo.NextSequence(ctx, partitionKey(inv.ID))
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	ev := OrderPlaced{
		EventType:     EventTypeOrderPlaced,
		EventID:       uuid.NewString(),
		Sequence:      seq,
		InvoiceID:     inv.ID,
		UserID:        inv.UserID,
		TotalPrice:    inv.TotalPrice,
		PaymentMethod: inv.PaymentMethod,
		OccurredAt:    time.Now().UTC(),
	}
	for _, it := range inv.Items {
		ev.Items = append(ev.Items, OrderLine{
			BookID:    it.BookID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}
	return p.publishJSON(ctx, OrderPlacedRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func partitionKey(invoiceID int64) string {
	return "invoice-" + strconv.FormatInt(invoiceID, 10)
}
