package cart

import "errors"

var ErrItemNotFound = errors.New("item not in cart")

// Item is one cart line. UnitPrice is snapshotted when the item is added;
// checkout totals use this price, not the book's price at settlement.
type Item struct {
	BookID    int64   `json:"bookId"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Cart is the session-scoped aggregate of line items. It lives and dies with
// the session and is never shared across sessions, so it carries no locking.
// Items keep insertion order for display.
type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

// AddItem appends a line or merges quantity into an existing one.
// No stock check happens here; stock is only authoritative at checkout.
func (c *Cart) AddItem(bookID int64, title string, unitPrice float64, quantity int) {
	if quantity < 1 {
		return
	}
	for i := range c.items {
		if c.items[i].BookID == bookID {
			c.items[i].Quantity += quantity
			return
		}
	}
	c.items = append(c.items, Item{BookID: bookID, Title: title, UnitPrice: unitPrice, Quantity: quantity})
}

// UpdateQuantity sets the line's quantity. Zero or negative removes the line.
func (c *Cart) UpdateQuantity(bookID int64, quantity int) error {
	for i := range c.items {
		if c.items[i].BookID == bookID {
			if quantity <= 0 {
				c.items = append(c.items[:i], c.items[i+1:]...)
				return nil
			}
			c.items[i].Quantity = quantity
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveItem drops the line. Removing an absent book is a no-op.
func (c *Cart) RemoveItem(bookID int64) {
	for i := range c.items {
		if c.items[i].BookID == bookID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Item(bookID int64) (Item, bool) {
	for _, it := range c.items {
		if it.BookID == bookID {
			return it, true
		}
	}
	return Item{}, false
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

func (c *Cart) TotalQuantity() int {
	sum := 0
	for _, it := range c.items {
		sum += it.Quantity
	}
	return sum
}

func (c *Cart) TotalPrice() float64 {
	sum := 0.0
	for _, it := range c.items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (c *Cart) Clear() {
	c.items = nil
}
