package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Hannie1812/bookstore-go/internal/dedup"
	"github.com/Hannie1812/bookstore-go/internal/invoice"
)

const paymentConfirmedConsumer = "bookstore-payment-confirmed"

// InvoiceUpdater is the slice of the invoice repository the consumer drives.
type InvoiceUpdater interface {
	UpdateStatus(ctx context.Context, invoiceID int64, status invoice.Status) error
	UpdatePaymentProof(ctx context.Context, invoiceID int64, proof string) error
}

// StartPaymentConfirmedConsumer applies payment confirmations to already
// committed invoices: the deferred half of the QR-transfer flow. The checkout
// engine never waits for this; it operates on the invoice id alone.
func StartPaymentConfirmedConsumer(ctx context.Context, conn *amqp.Connection, invoices InvoiceUpdater, dedupRepo dedup.Repository, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}

	queue := serviceQueue(PaymentConfirmedRoutingKey)
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	if err := ch.QueueBind(queue, PaymentConfirmedRoutingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(
		queue,
		paymentConfirmedConsumer,
		false, // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Println("stopping payment.confirmed consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Println("messages channel closed")
					return
				}

				if err := handlePaymentConfirmed(ctx, invoices, dedupRepo, msg.Body, logger); err != nil {
					logger.Printf("handle payment.confirmed: %v", err)
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func handlePaymentConfirmed(ctx context.Context, invoices InvoiceUpdater, dedupRepo dedup.Repository, body []byte, logger *log.Logger) error {
	var ev PaymentConfirmed
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.InvoiceID == 0 {
		return fmt.Errorf("missing invoiceId")
	}

	key := partitionKey(ev.InvoiceID)
	if ev.Sequence != 0 {
		last, ok, err := dedupRepo.GetLastSequence(ctx, paymentConfirmedConsumer, key)
		if err != nil {
			return err
		}
		if ok && ev.Sequence <= last {
			logger.Printf("skip duplicate payment.confirmed invoice=%d seq=%d last=%d", ev.InvoiceID, ev.Sequence, last)
			return nil
		}
	}

	if ev.Proof != "" {
		if err := invoices.UpdatePaymentProof(ctx, ev.InvoiceID, ev.Proof); err != nil && !errors.Is(err, invoice.ErrNotFound) {
			return fmt.Errorf("update proof for invoice %d: %w", ev.InvoiceID, err)
		}
	}
	if err := invoices.UpdateStatus(ctx, ev.InvoiceID, invoice.StatusPaid); err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			logger.Printf("payment.confirmed for unknown invoice %d", ev.InvoiceID)
			return nil
		}
		return fmt.Errorf("mark invoice %d paid: %w", ev.InvoiceID, err)
	}

	if ev.Sequence != 0 {
		if err := dedupRepo.UpsertLastSequence(ctx, paymentConfirmedConsumer, key, ev.Sequence); err != nil {
			return err
		}
	}

	logger.Printf("invoice %d marked paid", ev.InvoiceID)
	return nil
}
