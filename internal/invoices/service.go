package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/shared"
)

// AuditPort records invoice events for the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// LineItemInput describes one billed position on a new invoice.
type LineItemInput struct {
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// CreateInvoiceInput groups fields required to issue an invoice.
type CreateInvoiceInput struct {
	Number      string
	ClientName  string
	ClientEmail string
	DueDate     time.Time
	LineItems   []LineItemInput
}

// Service coordinates invoice issuance and status transitions.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the invoices service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create issues a new invoice with its line items as one atomic write. Line
// totals are quantity times unit price; the invoice total is their sum. When
// no number is supplied one is generated.
func (s *Service) Create(ctx context.Context, in CreateInvoiceInput) (Invoice, error) {
	if len(in.LineItems) == 0 {
		return Invoice{}, ErrNoLineItems
	}
	if in.ClientEmail != "" && !shared.ValidateEmail(in.ClientEmail) {
		return Invoice{}, ErrInvalidEmail
	}
	number := in.Number
	if number == "" {
		number = generateInvoiceNumber()
	}

	total := decimal.Zero
	items := make([]LineItem, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		lineTotal := li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
		items = append(items, LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			TotalPrice:  lineTotal,
		})
		total = total.Add(lineTotal)
	}

	invoice := Invoice{
		Number:      number,
		DateIssued:  s.now(),
		DueDate:     in.DueDate,
		ClientName:  in.ClientName,
		ClientEmail: in.ClientEmail,
		TotalAmount: total,
		Status:      StatusUnpaid,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertInvoice(ctx, invoice)
		if err != nil {
			return err
		}
		if err := tx.InsertLineItems(ctx, inserted.ID, items); err != nil {
			return err
		}
		invoice = inserted
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	invoice.LineItems = items
	s.record(ctx, shared.AuditInvoiceCreate, invoice.ID, map[string]any{
		"number": invoice.Number,
		"total":  invoice.TotalAmount.String(),
	})
	return invoice, nil
}

// List returns every invoice ordered by id, without line items.
func (s *Service) List(ctx context.Context) ([]Invoice, error) {
	return s.repo.List(ctx)
}

// Get fetches an invoice with its line items.
func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	items, err := s.repo.ListLineItems(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	invoice.LineItems = items
	return invoice, nil
}

// MarkPaid settles an unpaid or overdue invoice. Settling an already paid
// invoice is rejected.
func (s *Service) MarkPaid(ctx context.Context, id int64) (Invoice, error) {
	var invoice Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetInvoiceForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == StatusPaid {
			return ErrInvalidStatus
		}
		if err := tx.UpdateStatus(ctx, id, StatusPaid); err != nil {
			return err
		}
		current.Status = StatusPaid
		invoice = current
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, shared.AuditInvoicePaid, invoice.ID, map[string]any{"number": invoice.Number})
	return invoice, nil
}

func (s *Service) record(ctx context.Context, action shared.AuditAction, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "invoice",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       s.now(),
	})
}

func generateInvoiceNumber() string {
	return "INV-" + strings.ToUpper(uuid.NewString()[:8])
}
