package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates the ledger account categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeRevenue   AccountType = "Revenue"
	AccountTypeExpense   AccountType = "Expense"
)

// TransactionType enumerates posting directions.
type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeCredit TransactionType = "credit"
)

// Account models a general ledger account. Balance is a derived-but-stored
// quantity: every posting mutates it directly rather than recomputing from
// history.
type Account struct {
	ID          int64
	Name        string
	Type        AccountType
	Code        string
	Description string
	Balance     decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
}

// Transaction is a single debit or credit posted against one account.
// Immutable once created.
type Transaction struct {
	ID          int64
	AccountID   int64
	Amount      decimal.Decimal
	Type        TransactionType
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// JournalEntry groups balanced debit and credit lines. Immutable once created.
type JournalEntry struct {
	ID          int64
	EntryDate   time.Time
	Description string
	Reference   string
	CreatedAt   time.Time
	Lines       []JournalEntryLine
}

// JournalEntryLine stores the debit or credit amount for one account within
// an entry. Lines never exist outside their parent entry.
type JournalEntryLine struct {
	ID             int64
	JournalEntryID int64
	AccountID      int64
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	CreatedAt      time.Time
}
