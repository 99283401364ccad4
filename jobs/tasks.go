package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity scans journal entries for broken balance invariants.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskInvoiceOverdue flips unpaid invoices past their due date.
	TaskInvoiceOverdue = "invoices:overdue"
)

// LedgerIntegrityPayload configures an integrity scan run.
type LedgerIntegrityPayload struct {
	// Limit caps the number of reported entries per run; zero means no cap.
	Limit int `json:"limit"`
}

// NewLedgerIntegrityTask constructs an Asynq task for the integrity scan.
func NewLedgerIntegrityTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// InvoiceOverduePayload configures an overdue sweep run.
type InvoiceOverduePayload struct {
	AsOf time.Time `json:"as_of"`
}

// NewInvoiceOverdueTask constructs an Asynq task for the overdue sweep.
// A zero AsOf means "now" at handling time.
func NewInvoiceOverdueTask(asOf time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(InvoiceOverduePayload{AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceOverdue, data), nil
}
