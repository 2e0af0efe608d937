package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/Hannie1812/bookstore-go/internal/cart"
	"github.com/Hannie1812/bookstore-go/internal/catalog"
	"github.com/Hannie1812/bookstore-go/internal/invoice"
	"github.com/Hannie1812/bookstore-go/internal/stock"
	"github.com/Hannie1812/bookstore-go/internal/user"
)

type fakeBooks struct {
	books  map[int64]catalog.Book
	nextID int64
}

func (f *fakeBooks) Get(ctx context.Context, bookID int64) (catalog.Book, error) {
	b, ok := f.books[bookID]
	if !ok {
		return catalog.Book{}, catalog.ErrNotFound
	}
	return b, nil
}

func (f *fakeBooks) Create(ctx context.Context, b *catalog.Book) error {
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now().UTC()
	f.books[b.ID] = *b
	return nil
}

func (f *fakeBooks) Update(ctx context.Context, b catalog.Book) error {
	if _, ok := f.books[b.ID]; !ok {
		return catalog.ErrNotFound
	}
	f.books[b.ID] = b
	return nil
}

func (f *fakeBooks) List(ctx context.Context, page, pageSize int) (catalog.Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	ids := make([]int64, 0, len(f.books))
	for id := range f.books {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	p := catalog.Page{Page: page, PageSize: pageSize, TotalBooks: len(ids)}
	p.TotalPages = (p.TotalBooks + pageSize - 1) / pageSize
	for i := (page - 1) * pageSize; i < len(ids) && i < page*pageSize; i++ {
		p.Books = append(p.Books, f.books[ids[i]])
	}
	return p, nil
}

type fakeStockRepo struct {
	quantities map[int64]int
}

func (f *fakeStockRepo) Quantity(ctx context.Context, bookID int64) (int, error) {
	q, ok := f.quantities[bookID]
	if !ok {
		return 0, stock.ErrNotFound
	}
	return q, nil
}

func (f *fakeStockRepo) QuantityTx(ctx context.Context, tx pgx.Tx, bookID int64) (int, error) {
	return f.Quantity(ctx, bookID)
}

func (f *fakeStockRepo) DecrementTx(ctx context.Context, tx pgx.Tx, bookID int64, amount int) error {
	if f.quantities[bookID] < amount {
		return stock.ErrInsufficient
	}
	f.quantities[bookID] -= amount
	return nil
}

func (f *fakeStockRepo) SetQuantity(ctx context.Context, bookID int64, quantity int) error {
	if _, ok := f.quantities[bookID]; !ok {
		return stock.ErrNotFound
	}
	f.quantities[bookID] = quantity
	return nil
}

type fakeUsers struct {
	users map[string]*user.User
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return f.users[username], nil
}

type fakeInvoices struct {
	invoices map[int64]*invoice.Invoice
	statuses map[int64]invoice.Status
	proofs   map[int64]string
}

func (f *fakeInvoices) CreateTx(ctx context.Context, tx pgx.Tx, inv *invoice.Invoice) error {
	return nil
}

func (f *fakeInvoices) GetByID(ctx context.Context, invoiceID int64) (*invoice.Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvoices) ListByUser(ctx context.Context, userID int64) ([]invoice.Invoice, error) {
	var out []invoice.Invoice
	ids := make([]int64, 0, len(f.invoices))
	for id := range f.invoices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if f.invoices[id].UserID == userID {
			out = append(out, *f.invoices[id])
		}
	}
	return out, nil
}

func (f *fakeInvoices) UpdateStatus(ctx context.Context, invoiceID int64, status invoice.Status) error {
	if _, ok := f.invoices[invoiceID]; !ok {
		return invoice.ErrNotFound
	}
	f.statuses[invoiceID] = status
	return nil
}

func (f *fakeInvoices) UpdatePaymentProof(ctx context.Context, invoiceID int64, proof string) error {
	if _, ok := f.invoices[invoiceID]; !ok {
		return invoice.ErrNotFound
	}
	f.proofs[invoiceID] = proof
	f.statuses[invoiceID] = invoice.StatusAwaitingConfirmation
	return nil
}

type fakeEngine struct {
	inv *invoice.Invoice
	err error

	calls       int
	gotUserID   int64
	gotAddress  string
	gotPayment  string
	gotQuantity int
}

func (f *fakeEngine) Checkout(ctx context.Context, c *cart.Cart, userID int64, shippingAddress, paymentMethod string) (*invoice.Invoice, error) {
	f.calls++
	f.gotUserID = userID
	f.gotAddress = shippingAddress
	f.gotPayment = paymentMethod
	f.gotQuantity = c.TotalQuantity()
	if f.err != nil {
		return nil, f.err
	}
	return f.inv, nil
}

type fixtures struct {
	books    *fakeBooks
	stock    *fakeStockRepo
	users    *fakeUsers
	invoices *fakeInvoices
	engine   *fakeEngine
	handler  http.Handler
}

func newFixtures() *fixtures {
	f := &fixtures{
		books:    &fakeBooks{books: map[int64]catalog.Book{}},
		stock:    &fakeStockRepo{quantities: map[int64]int{}},
		users:    &fakeUsers{users: map[string]*user.User{}},
		invoices: &fakeInvoices{invoices: map[int64]*invoice.Invoice{}, statuses: map[int64]invoice.Status{}, proofs: map[int64]string{}},
		engine:   &fakeEngine{},
	}
	cartSvc := cart.NewService(cart.NewSessions(), f.books, f.stock)
	f.handler = NewRouter(
		NewCatalogHandler(f.books, f.stock),
		NewCartHandler(cartSvc),
		NewCheckoutHandler(f.engine, cartSvc, f.users),
		NewInvoiceHandler(f.invoices, f.users),
	)
	return f
}

func (f *fixtures) addBook(title string, price float64, quantity int) int64 {
	b := catalog.Book{Title: title, Price: price, Quantity: quantity}
	_ = f.books.Create(context.Background(), &b)
	f.stock.quantities[b.ID] = quantity
	return b.ID
}

func (f *fixtures) addUser(username, address string) *user.User {
	u := &user.User{ID: int64(len(f.users.users) + 1), Username: username, Address: address}
	f.users.users[username] = u
	return u
}

type request struct {
	method  string
	path    string
	user    string
	session string
	body    any
}

func (f *fixtures) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	session := req.session
	if session == "" {
		session = "default"
	}
	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionUUID(session)})
	if req.user != "" {
		r.Header.Set("X-User", req.user)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

// sessionUUID turns a readable session name into the uuid form the session
// middleware accepts, deterministically per name.
func sessionUUID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
