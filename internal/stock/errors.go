package stock

import "fmt"

// InsufficientError carries the availability a failed stock check observed.
type InsufficientError struct {
	BookID    int64
	Requested int
	Available int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock for book %d: requested %d, available %d",
		e.BookID, e.Requested, e.Available)
}

func (e *InsufficientError) Unwrap() error { return ErrInsufficient }
