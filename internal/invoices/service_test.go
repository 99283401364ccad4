package invoices

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/quillbooks/quillbooks/testing"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	invoices  map[int64]*Invoice
	lineItems map[int64][]LineItem
	nextID    int64

	// Error injection
	txError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		invoices:  make(map[int64]*Invoice),
		lineItems: make(map[int64][]LineItem),
		nextID:    1,
	}
}

func (m *mockRepository) List(ctx context.Context) ([]Invoice, error) {
	out := []Invoice{}
	for id := int64(1); id < m.nextID; id++ {
		if inv, ok := m.invoices[id]; ok {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, ErrInvoiceNotFound
	}
	return *inv, nil
}

func (m *mockRepository) ListLineItems(ctx context.Context, invoiceID int64) ([]LineItem, error) {
	return m.lineItems[invoiceID], nil
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, &mockTxRepo{mock: m})
}

type mockTxRepo struct {
	mock *mockRepository
}

func (t *mockTxRepo) InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	for _, existing := range t.mock.invoices {
		if existing.Number == inv.Number {
			return Invoice{}, ErrNumberConflict
		}
	}
	inv.ID = t.mock.nextID
	t.mock.nextID++
	stored := inv
	t.mock.invoices[inv.ID] = &stored
	return inv, nil
}

func (t *mockTxRepo) InsertLineItems(ctx context.Context, invoiceID int64, items []LineItem) error {
	for i := range items {
		items[i].InvoiceID = invoiceID
	}
	t.mock.lineItems[invoiceID] = append(t.mock.lineItems[invoiceID], items...)
	return nil
}

func (t *mockTxRepo) GetInvoiceForUpdate(ctx context.Context, id int64) (Invoice, error) {
	inv, ok := t.mock.invoices[id]
	if !ok {
		return Invoice{}, ErrInvoiceNotFound
	}
	return *inv, nil
}

func (t *mockTxRepo) UpdateStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	inv, ok := t.mock.invoices[id]
	if !ok {
		return ErrInvoiceNotFound
	}
	inv.Status = status
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

func dueDate() time.Time {
	return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientName: "Acme Corp",
		DueDate:    dueDate(),
		LineItems: []LineItemInput{
			{Description: "Consulting", Quantity: 10, UnitPrice: decimal.NewFromInt(150)},
			{Description: "Travel", Quantity: 2, UnitPrice: decimal.NewFromFloat(99.50)},
		},
	})
	require.NoError(t, err)
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(1699)), "expected 1699, got %s", invoice.TotalAmount)
	assert.Equal(t, StatusUnpaid, invoice.Status)
	require.Len(t, repo.lineItems[invoice.ID], 2)
	assert.True(t, repo.lineItems[invoice.ID][0].TotalPrice.Equal(decimal.NewFromInt(1500)))
}

func TestCreateInvoiceGeneratesNumber(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientName: "Acme Corp",
		DueDate:    dueDate(),
		LineItems:  []LineItemInput{{Description: "Widget", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(invoice.Number, "INV-"), "expected generated number, got %q", invoice.Number)
	assert.Len(t, invoice.Number, 12)
}

func TestCreateInvoiceKeepsExplicitNumber(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		Number:     "INV-2026-001",
		ClientName: "Acme Corp",
		DueDate:    dueDate(),
		LineItems:  []LineItemInput{{Description: "Widget", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-001", invoice.Number)
}

func TestCreateInvoiceDuplicateNumber(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	in := CreateInvoiceInput{
		Number:     "INV-2026-001",
		ClientName: "Acme Corp",
		DueDate:    dueDate(),
		LineItems:  []LineItemInput{{Description: "Widget", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	}

	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrNumberConflict)
}

func TestCreateInvoiceRequiresLineItems(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Create(context.Background(), CreateInvoiceInput{ClientName: "Acme Corp", DueDate: dueDate()})
	assert.ErrorIs(t, err, ErrNoLineItems)
}

func TestCreateInvoiceRejectsBadEmail(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientName:  "Acme Corp",
		ClientEmail: "not-an-email",
		DueDate:     dueDate(),
		LineItems:   []LineItemInput{{Description: "Widget", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestCreateInvoiceAcceptsEmptyEmail(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientName: "Acme Corp",
		DueDate:    dueDate(),
		LineItems:  []LineItemInput{{Description: "Widget", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	assert.NoError(t, err)
}

func TestGetInvoiceWithLineItems(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientName: "Acme Corp",
		DueDate:    dueDate(),
		LineItems:  []LineItemInput{{Description: "Widget", Quantity: 3, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 1)
	assert.True(t, got.LineItems[0].TotalPrice.Equal(decimal.NewFromInt(30)))
}

func TestGetInvoiceNotFound(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestMarkPaid(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientName: "Acme Corp",
		DueDate:    dueDate(),
		LineItems:  []LineItemInput{{Description: "Widget", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	assert.Equal(t, StatusPaid, repo.invoices[created.ID].Status)
}

func TestMarkPaidTwiceRejected(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientName: "Acme Corp",
		DueDate:    dueDate(),
		LineItems:  []LineItemInput{{Description: "Widget", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	_, err = svc.MarkPaid(context.Background(), created.ID)
	require.NoError(t, err)
	_, err = svc.MarkPaid(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestMarkPaidOverdueAllowed(t *testing.T) {
	repo := newMockRepository()
	repo.invoices[1] = &Invoice{ID: 1, Number: "INV-X", Status: StatusOverdue}
	repo.nextID = 2
	svc := NewService(repo, nil)

	paid, err := svc.MarkPaid(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
}

func TestMarkPaidNotFound(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.MarkPaid(context.Background(), 42)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}
