package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/fx"
	"github.com/quillbooks/quillbooks/internal/shared"
)

// AuditPort records ledger events for the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates account creation and posting flows.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ListAccounts returns every account ordered by id.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

// GetAccount fetches a single account.
func (s *Service) GetAccount(ctx context.Context, id int64) (Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// CreateAccount opens a new account. When no code is supplied one is derived
// from the name and the current time; a duplicate code surfaces as
// ErrCodeConflict.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	code := in.Code
	if code == "" {
		code = GenerateAccountCode(in.Name, s.now())
	}
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertAccount(ctx, in, code)
		if err != nil {
			return err
		}
		account = inserted
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, shared.AuditAccountCreate, "account", account.ID, map[string]any{
		"code": account.Code,
		"type": string(account.Type),
	})
	return account, nil
}

// PostTransaction applies a single debit or credit to an account. The
// transaction row and the balance update commit as one atomic unit. The
// amount's sign is not validated: a negative amount inverts the effect.
func (s *Service) PostTransaction(ctx context.Context, in PostTransactionInput) (Transaction, error) {
	var delta decimal.Decimal
	switch in.Type {
	case TransactionTypeDebit:
		delta = in.Amount
	case TransactionTypeCredit:
		delta = in.Amount.Neg()
	default:
		return Transaction{}, ErrInvalidTransactionType
	}
	var txn Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, err := tx.GetAccountForUpdate(ctx, in.AccountID)
		if err != nil {
			return err
		}
		inserted, err := tx.InsertTransaction(ctx, in, s.now())
		if err != nil {
			return err
		}
		if err := tx.UpdateAccountBalance(ctx, account.ID, account.Balance.Add(delta)); err != nil {
			return err
		}
		txn = inserted
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	s.record(ctx, shared.AuditTransactionPost, "transaction", txn.ID, map[string]any{
		"account_id": in.AccountID,
		"type":       string(in.Type),
		"amount":     in.Amount.String(),
	})
	return txn, nil
}

// ConvertAndPostTransaction converts the amount with an explicit rate and
// posts the result. No independent validation of rate or currency codes.
func (s *Service) ConvertAndPostTransaction(ctx context.Context, in PostTransactionInput, fromCcy, toCcy string, rate decimal.Decimal) (Transaction, error) {
	in.Amount = fx.Convert(in.Amount, fromCcy, toCcy, rate)
	return s.PostTransaction(ctx, in)
}

// CreateJournalEntry validates the double-entry invariant up front and then
// persists the entry, its lines, and every balance update in one transaction.
// Any failure, including a missing account on any line, discards the whole
// entry.
func (s *Service) CreateJournalEntry(ctx context.Context, in CreateJournalEntryInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertJournalEntry(ctx, in, s.now())
		if err != nil {
			return err
		}
		for _, line := range in.Lines {
			account, err := tx.GetAccountForUpdate(ctx, line.AccountID)
			if err != nil {
				return err
			}
			stored, err := tx.InsertJournalLine(ctx, inserted.ID, line)
			if err != nil {
				return err
			}
			balance := account.Balance.Add(line.Debit.Sub(line.Credit))
			if err := tx.UpdateAccountBalance(ctx, account.ID, balance); err != nil {
				return err
			}
			inserted.Lines = append(inserted.Lines, stored)
		}
		entry = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	debit, credit := in.Totals()
	s.record(ctx, shared.AuditJournalPost, "journal_entry", entry.ID, map[string]any{
		"lines":        len(entry.Lines),
		"total_debit":  debit.String(),
		"total_credit": credit.String(),
	})
	return entry, nil
}

func (s *Service) record(ctx context.Context, action shared.AuditAction, entity string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   entity,
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       s.now(),
	})
}
