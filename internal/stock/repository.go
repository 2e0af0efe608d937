package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("stock record not found")

	// ErrInsufficient reports a conditional decrement that found fewer units
	// on hand than requested. The row is left untouched.
	ErrInsufficient = errors.New("insufficient stock")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Querier is satisfied by both the pool and pgx.Tx, so reads can run inside
// or outside a transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository is the durable source of truth for on-hand quantities.
// Stock lives on the books table; the quantity column carries a CHECK >= 0
// constraint as a last line of defense.
type Repository interface {
	Quantity(ctx context.Context, bookID int64) (int, error)
	QuantityTx(ctx context.Context, tx pgx.Tx, bookID int64) (int, error)
	DecrementTx(ctx context.Context, tx pgx.Tx, bookID int64, amount int) error
	SetQuantity(ctx context.Context, bookID int64, quantity int) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Quantity(ctx context.Context, bookID int64) (int, error) {
	return quantity(ctx, r.pool, bookID, false)
}

// QuantityTx re-reads the on-hand count inside the caller's transaction and
// locks the row until commit. This read, not any value cached when the item
// entered the cart, is what checkout trusts.
func (r *PostgresRepository) QuantityTx(ctx context.Context, tx pgx.Tx, bookID int64) (int, error) {
	return quantity(ctx, tx, bookID, true)
}

func quantity(ctx context.Context, q Querier, bookID int64, forUpdate bool) (int, error) {
	query := `SELECT quantity FROM books WHERE id=$1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var available int
	if err := q.QueryRow(ctx, query, bookID).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return available, nil
}

// DecrementTx subtracts amount from the book's on-hand count inside the
// caller's transaction. The WHERE clause makes the decrement conditional, so
// a racing transaction that drained the row turns into ErrInsufficient
// rather than a negative quantity.
func (r *PostgresRepository) DecrementTx(ctx context.Context, tx pgx.Tx, bookID int64, amount int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE books SET quantity = quantity - $2, updated_at=now()
		WHERE id=$1 AND quantity >= $2
	`, bookID, amount)
	if err != nil {
		return fmt.Errorf("decrement stock for book %d: %w", bookID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficient
	}
	return nil
}

func (r *PostgresRepository) SetQuantity(ctx context.Context, bookID int64, quantity int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE books SET quantity=$2, updated_at=now()
		WHERE id=$1
	`, bookID, quantity)
	if err != nil {
		return fmt.Errorf("set stock for book %d: %w", bookID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
