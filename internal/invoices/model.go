package invoices

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enumerates invoice lifecycle values.
type InvoiceStatus string

const (
	StatusUnpaid  InvoiceStatus = "unpaid"
	StatusPaid    InvoiceStatus = "paid"
	StatusOverdue InvoiceStatus = "overdue"
)

var (
	// ErrInvoiceNotFound indicates a missing invoice.
	ErrInvoiceNotFound = errors.New("invoices: invoice not found")
	// ErrNumberConflict indicates a duplicate invoice number.
	ErrNumberConflict = errors.New("invoices: invoice number already exists")
	// ErrInvalidEmail indicates a malformed client email.
	ErrInvalidEmail = errors.New("invoices: invalid client email")
	// ErrInvalidStatus indicates a disallowed status transition.
	ErrInvalidStatus = errors.New("invoices: invalid status transition")
	// ErrNoLineItems indicates an invoice without line items.
	ErrNoLineItems = errors.New("invoices: invoice requires at least one line item")
)

// Invoice represents an issued invoice.
type Invoice struct {
	ID          int64
	Number      string
	DateIssued  time.Time
	DueDate     time.Time
	ClientName  string
	ClientEmail string
	TotalAmount decimal.Decimal
	Status      InvoiceStatus
	LineItems   []LineItem
}

// LineItem is one billed position on an invoice.
type LineItem struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}
