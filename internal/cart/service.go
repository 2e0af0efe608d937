package cart

import (
	"context"
	"fmt"

	"github.com/Hannie1812/bookstore-go/internal/catalog"
	"github.com/Hannie1812/bookstore-go/internal/stock"
)

// StockReader is the slice of the stock repository the cart needs for its
// best-effort availability check.
type StockReader interface {
	Quantity(ctx context.Context, bookID int64) (int, error)
}

// Service manages session carts against the catalog and current stock.
// The stock check in UpdateQuantity is early feedback only; the checkout
// engine re-reads stock authoritatively inside its transaction.
type Service struct {
	sessions *Sessions
	books    catalog.Repository
	stock    StockReader
}

func NewService(sessions *Sessions, books catalog.Repository, stockReader StockReader) *Service {
	return &Service{sessions: sessions, books: books, stock: stockReader}
}

// Cart returns the session's cart, creating it on first access.
func (s *Service) Cart(sessionID string) *Cart {
	return s.sessions.Get(sessionID)
}

// AddItem snapshots the book's title and price into the session cart.
// The cart append itself cannot fail; only the catalog lookup can.
func (s *Service) AddItem(ctx context.Context, sessionID string, bookID int64, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	b, err := s.books.Get(ctx, bookID)
	if err != nil {
		return err
	}
	s.sessions.Get(sessionID).AddItem(b.ID, b.Title, b.Price, quantity)
	return nil
}

// UpdateQuantity sets a line's quantity after checking it against the stock
// on hand right now. Zero or negative removes the line without any check.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, bookID int64, quantity int) error {
	c := s.sessions.Get(sessionID)

	if quantity <= 0 {
		return c.UpdateQuantity(bookID, quantity)
	}

	available, err := s.stock.Quantity(ctx, bookID)
	if err != nil {
		return err
	}
	if quantity > available {
		return &stock.InsufficientError{BookID: bookID, Requested: quantity, Available: available}
	}
	return c.UpdateQuantity(bookID, quantity)
}

func (s *Service) RemoveItem(sessionID string, bookID int64) {
	s.sessions.Get(sessionID).RemoveItem(bookID)
}

func (s *Service) Clear(sessionID string) {
	s.sessions.Get(sessionID).Clear()
}
