package catalog

import "time"

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// Page is one page of the book listing.
type Page struct {
	Books      []Book `json:"books"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalBooks int    `json:"totalBooks"`
	TotalPages int    `json:"totalPages"`
}
