package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

	// ErrConflict means concurrent checkouts or transient store failures kept
	// invalidating this one and the retry budget ran out. The caller should
	// ask the user to try again.
	ErrConflict = errors.New("checkout conflict, retries exhausted")
)

// BookNotFoundError reports a cart line whose book no longer exists.
type BookNotFoundError struct {
	BookID int64
}

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("book %d not found", e.BookID)
}
