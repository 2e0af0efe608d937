package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("book not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Get(ctx context.Context, bookID int64) (Book, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b Book) error
	List(ctx context.Context, page, pageSize int) (Page, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, bookID int64) (Book, error) {
	var b Book
	row := r.pool.QueryRow(ctx,
		`SELECT id, title, author, price, quantity, created_at FROM books WHERE id=$1`, bookID)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Quantity, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepository) Create(ctx context.Context, b *Book) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO books (title, author, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, b.Title, b.Author, b.Price, b.Quantity).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// Update writes the book's descriptive fields. Stock levels change only
// through the stock repository.
func (r *PostgresRepository) Update(ctx context.Context, b Book) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE books SET title=$2, author=$3, price=$4, updated_at=now()
		WHERE id=$1
	`, b.ID, b.Title, b.Author, b.Price)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	p := Page{Page: page, PageSize: pageSize}

	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM books`).Scan(&p.TotalBooks); err != nil {
		return Page{}, fmt.Errorf("count books: %w", err)
	}
	// Partial pages count as a page.
	p.TotalPages = (p.TotalBooks + pageSize - 1) / pageSize

	rows, err := r.pool.Query(ctx, `
		SELECT id, title, author, price, quantity, created_at
		FROM books ORDER BY id LIMIT $1 OFFSET $2
	`, pageSize, (page-1)*pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("select books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Quantity, &b.CreatedAt); err != nil {
			return Page{}, fmt.Errorf("scan book: %w", err)
		}
		p.Books = append(p.Books, b)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("rows: %w", err)
	}

	return p, nil
}
