package statements

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Statement type labels as they appear on the wire.
const (
	TypeBalanceSheet    = "Balance Sheet"
	TypeIncomeStatement = "Income Statement"
)

// ErrStatementNotFound indicates a missing statement.
var ErrStatementNotFound = errors.New("statements: financial statement not found")

// FinancialStatement is a statement header. Its items are frozen at
// generation time; the statement never changes afterwards.
type FinancialStatement struct {
	ID          int64
	Type        string
	PeriodStart time.Time
	PeriodEnd   time.Time
	GeneratedAt time.Time
}

// FinancialStatementItem is one account's snapshot line on a statement.
type FinancialStatementItem struct {
	ID          int64
	StatementID int64
	AccountID   int64
	Amount      decimal.Decimal
}

// ItemView is the read shape of a statement line.
type ItemView struct {
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// View is the assembled read shape of a statement. It is JSON-cacheable.
type View struct {
	ID            int64      `json:"id"`
	StatementType string     `json:"statement_type"`
	PeriodStart   string     `json:"period_start"`
	PeriodEnd     string     `json:"period_end"`
	Items         []ItemView `json:"items"`
}
