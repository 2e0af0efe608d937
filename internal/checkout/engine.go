package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Hannie1812/bookstore-go/internal/cart"
	"github.com/Hannie1812/bookstore-go/internal/invoice"
	"github.com/Hannie1812/bookstore-go/internal/stock"
)

const (
	maxAttempts    = 3
	retryBackoff   = 50 * time.Millisecond
	attemptTimeout = 5 * time.Second
)

// Beginner matches the BeginTx method of *pgxpool.Pool.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// StockStore is the slice of the stock repository checkout drives.
// Both methods run inside the checkout transaction.
type StockStore interface {
	QuantityTx(ctx context.Context, tx pgx.Tx, bookID int64) (int, error)
	DecrementTx(ctx context.Context, tx pgx.Tx, bookID int64, amount int) error
}

// InvoiceStore persists the invoice and its lines inside the checkout transaction.
type InvoiceStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, inv *invoice.Invoice) error
}

// Notifier is told about committed invoices. Failures are logged, never
// surfaced: the order is already durable by the time it runs.
type Notifier interface {
	InvoicePlaced(ctx context.Context, inv *invoice.Invoice) error
}

// Engine converts a session cart into a committed invoice with matching
// stock decrements. Every attempt runs in one serializable transaction:
// stock is re-read inside the transaction, every line is checked before any
// decrement, and the invoice commits together with the decrements, so no
// set of concurrent checkouts can jointly oversell a book.
type Engine struct {
	db       Beginner
	stock    StockStore
	invoices InvoiceStore
	notifier Notifier
	logger   *log.Logger
}

// NewEngine wires the checkout engine. notifier may be nil.
func NewEngine(db Beginner, stockStore StockStore, invoices InvoiceStore, notifier Notifier, logger *log.Logger) *Engine {
	return &Engine{db: db, stock: stockStore, invoices: invoices, notifier: notifier, logger: logger}
}

// Checkout places an order for everything in the cart. On success the cart
// is cleared and the committed invoice returned. On any error the database
// is left exactly as it was and the cart keeps its items.
//
// Serialization conflicts, deadlocks, lock timeouts and transient store
// failures are retried with the original cart contents up to the retry
// budget, then reported as ErrConflict.
func (e *Engine) Checkout(ctx context.Context, c *cart.Cart, userID int64, shippingAddress, paymentMethod string) (*invoice.Invoice, error) {
	if c.Empty() {
		return nil, ErrEmptyCart
	}
	items := c.Items()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		inv, err := e.attempt(ctx, items, userID, shippingAddress, paymentMethod)
		if err == nil {
			c.Clear()
			e.notifyPlaced(ctx, inv)
			return inv, nil
		}
		if !shouldRetry(ctx, err) {
			return nil, err
		}

		lastErr = err
		e.logger.Printf("checkout attempt %d/%d for user %d conflicted: %v", attempt, maxAttempts, userID, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}

	e.logger.Printf("checkout for user %d gave up after %d attempts: %v", userID, maxAttempts, lastErr)
	return nil, fmt.Errorf("after %d attempts (last: %v): %w", maxAttempts, lastErr, ErrConflict)
}

func (e *Engine) attempt(ctx context.Context, items []cart.Item, userID int64, shippingAddress, paymentMethod string) (*invoice.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	tx, err := e.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin checkout tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Check every line before touching any row, so a shortfall on the last
	// line leaves the first line's stock unchanged.
	for _, it := range items {
		available, err := e.stock.QuantityTx(ctx, tx, it.BookID)
		if err != nil {
			if errors.Is(err, stock.ErrNotFound) {
				return nil, &BookNotFoundError{BookID: it.BookID}
			}
			return nil, fmt.Errorf("read stock for book %d: %w", it.BookID, err)
		}
		if available < it.Quantity {
			return nil, &stock.InsufficientError{BookID: it.BookID, Requested: it.Quantity, Available: available}
		}
	}

	for _, it := range items {
		if err := e.stock.DecrementTx(ctx, tx, it.BookID, it.Quantity); err != nil {
			if errors.Is(err, stock.ErrInsufficient) {
				available, qerr := e.stock.QuantityTx(ctx, tx, it.BookID)
				if qerr != nil {
					available = 0
				}
				return nil, &stock.InsufficientError{BookID: it.BookID, Requested: it.Quantity, Available: available}
			}
			return nil, err
		}
	}

	inv := &invoice.Invoice{
		UserID:          userID,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		Status:          invoice.StatusPlaced,
		CreatedAt:       time.Now().UTC(),
	}
	for _, it := range items {
		inv.Items = append(inv.Items, invoice.Item{
			BookID:    it.BookID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
		inv.TotalPrice += it.UnitPrice * float64(it.Quantity)
	}

	if err := e.invoices.CreateTx(ctx, tx, inv); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return inv, nil
}

func (e *Engine) notifyPlaced(ctx context.Context, inv *invoice.Invoice) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.InvoicePlaced(ctx, inv); err != nil {
		e.logger.Printf("publish invoice %d placed: %v", inv.ID, err)
	}
}

// shouldRetry reports whether the attempt is worth running again. Real
// outcomes (a line short on stock, a book that no longer exists) are final;
// everything else, serialization failures, deadlocks, lock timeouts, attempt
// timeouts and transient store errors alike, left no partial effect behind
// the rolled-back transaction and is retried while the caller's context is
// still alive.
func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var insufficient *stock.InsufficientError
	var notFound *BookNotFoundError
	if errors.As(err, &insufficient) || errors.As(err, &notFound) {
		return false
	}
	return true
}
