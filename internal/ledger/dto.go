package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CreateAccountInput groups fields for opening an account.
type CreateAccountInput struct {
	Name           string
	Type           AccountType
	Code           string
	InitialBalance decimal.Decimal
	Description    string
}

// PostTransactionInput describes a single debit or credit posting.
type PostTransactionInput struct {
	AccountID   int64
	Amount      decimal.Decimal
	Type        TransactionType
	Description string
}

// JournalLineInput describes one line of a journal entry. A line may carry a
// debit, a credit, or both; only the aggregate balance rule is enforced.
type JournalLineInput struct {
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// CreateJournalEntryInput groups fields required to post a journal entry.
type CreateJournalEntryInput struct {
	Description string
	Reference   string
	Lines       []JournalLineInput
}

// Totals returns the debit and credit sums over all lines.
func (in CreateJournalEntryInput) Totals() (decimal.Decimal, decimal.Decimal) {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, line := range in.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// Validate enforces the double-entry invariant before anything is committed.
// The debit/credit comparison is exact, which decimal arithmetic keeps
// meaningful.
func (in CreateJournalEntryInput) Validate() error {
	if len(in.Lines) == 0 {
		return ErrNoLines
	}
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("ledger: line %d missing account", idx)
		}
	}
	debit, credit := in.Totals()
	if !debit.Equal(credit) {
		return ErrUnbalanced
	}
	return nil
}
