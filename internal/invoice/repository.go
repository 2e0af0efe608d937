package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("invoice not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	// CreateTx inserts the invoice and its line items inside the caller's
	// transaction, so they commit or roll back together with the stock
	// decrements. The invoice id is assigned on insert.
	CreateTx(ctx context.Context, tx pgx.Tx, inv *Invoice) error
	GetByID(ctx context.Context, invoiceID int64) (*Invoice, error)
	ListByUser(ctx context.Context, userID int64) ([]Invoice, error)
	UpdateStatus(ctx context.Context, invoiceID int64, status Status) error
	UpdatePaymentProof(ctx context.Context, invoiceID int64, proof string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, inv *Invoice) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO invoices (user_id, total_price, shipping_address, payment_method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, inv.UserID, inv.TotalPrice, inv.ShippingAddress, inv.PaymentMethod, string(inv.Status), inv.CreatedAt).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	for _, it := range inv.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, book_id, title, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, inv.ID, it.BookID, it.Title, it.Quantity, it.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, invoiceID int64) (*Invoice, error) {
	var inv Invoice
	var status string
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, total_price, shipping_address, payment_method, status, payment_proof, created_at
		FROM invoices WHERE id=$1
	`, invoiceID).Scan(&inv.ID, &inv.UserID, &inv.TotalPrice, &inv.ShippingAddress,
		&inv.PaymentMethod, &status, &inv.PaymentProof, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select invoice: %w", err)
	}
	inv.Status = Status(status)

	items, err := r.loadItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	return &inv, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, total_price, shipping_address, payment_method, status, payment_proof, created_at
		FROM invoices WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		var status string
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.TotalPrice, &inv.ShippingAddress,
			&inv.PaymentMethod, &status, &inv.PaymentProof, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.Status = Status(status)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range invoices {
		items, err := r.loadItems(ctx, invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Items = items
	}

	return invoices, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, invoiceID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT book_id, title, quantity, unit_price
		FROM invoice_items WHERE invoice_id=$1 ORDER BY id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("select invoice items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.BookID, &it.Title, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, invoiceID int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET status=$2 WHERE id=$1`, invoiceID, string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdatePaymentProof(ctx context.Context, invoiceID int64, proof string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET payment_proof=$2, status=$3 WHERE id=$1`,
		invoiceID, proof, string(StatusAwaitingConfirmation))
	if err != nil {
		return fmt.Errorf("update payment proof: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
