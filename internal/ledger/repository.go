package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository encapsulates DB operations for the ledger.
type Repository interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction. Every
// multi-write ledger operation runs against one of these so that partial
// application is never observable.
type TxRepository interface {
	InsertAccount(ctx context.Context, in CreateAccountInput, code string) (Account, error)
	GetAccountForUpdate(ctx context.Context, id int64) (Account, error)
	UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	InsertTransaction(ctx context.Context, in PostTransactionInput, date time.Time) (Transaction, error)
	InsertJournalEntry(ctx context.Context, in CreateJournalEntryInput, date time.Time) (JournalEntry, error)
	InsertJournalLine(ctx context.Context, entryID int64, line JournalLineInput) (JournalEntryLine, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed ledger repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, name, account_type, code, description, balance, is_active, created_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Code, &a.Description, &a.Balance, &a.IsActive, &a.CreatedAt)
	return a, err
}

func (r *repository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertAccount(ctx context.Context, in CreateAccountInput, code string) (Account, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO accounts (name, account_type, code, description, balance, is_active)
VALUES ($1,$2,$3,$4,$5,TRUE) RETURNING id, created_at`, in.Name, in.Type, code, in.Description, in.InitialBalance)
	account := Account{
		Name:        in.Name,
		Type:        in.Type,
		Code:        code,
		Description: in.Description,
		Balance:     in.InitialBalance,
		IsActive:    true,
	}
	if err := row.Scan(&account.ID, &account.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrCodeConflict
		}
		return Account{}, err
	}
	return account, nil
}

func (r *txRepository) GetAccountForUpdate(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *txRepository) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET balance=$2 WHERE id=$1`, id, balance)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, in PostTransactionInput, date time.Time) (Transaction, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO transactions (account_id, amount, transaction_type, description, date)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`, in.AccountID, in.Amount, in.Type, in.Description, date)
	txn := Transaction{
		AccountID:   in.AccountID,
		Amount:      in.Amount,
		Type:        in.Type,
		Description: in.Description,
		Date:        date,
	}
	if err := row.Scan(&txn.ID, &txn.CreatedAt); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

func (r *txRepository) InsertJournalEntry(ctx context.Context, in CreateJournalEntryInput, date time.Time) (JournalEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (entry_date, description, reference)
VALUES ($1,$2,$3) RETURNING id, created_at`, date, in.Description, nullString(in.Reference))
	entry := JournalEntry{
		EntryDate:   date,
		Description: in.Description,
		Reference:   in.Reference,
	}
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertJournalLine(ctx context.Context, entryID int64, line JournalLineInput) (JournalEntryLine, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entry_lines (journal_entry_id, account_id, debit, credit)
VALUES ($1,$2,$3,$4) RETURNING id, created_at`, entryID, line.AccountID, line.Debit, line.Credit)
	out := JournalEntryLine{
		JournalEntryID: entryID,
		AccountID:      line.AccountID,
		Debit:          line.Debit,
		Credit:         line.Credit,
	}
	if err := row.Scan(&out.ID, &out.CreatedAt); err != nil {
		return JournalEntryLine{}, err
	}
	return out, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
