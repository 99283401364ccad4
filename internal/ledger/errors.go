package ledger

import "errors"

var (
	// ErrAccountNotFound indicates a referenced account does not exist.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrInvalidTransactionType indicates a type outside debit/credit.
	ErrInvalidTransactionType = errors.New("ledger: invalid transaction type")
	// ErrUnbalanced indicates total debits differ from total credits.
	ErrUnbalanced = errors.New("ledger: total debits must equal total credits")
	// ErrCodeConflict indicates a duplicate account code.
	ErrCodeConflict = errors.New("ledger: account code already exists")
	// ErrNoLines indicates a journal entry without lines.
	ErrNoLines = errors.New("ledger: journal entry requires at least one line")
)
