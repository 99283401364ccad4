package statements

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/ledger"
)

// Repository encapsulates DB operations for financial statements.
type Repository interface {
	GetStatement(ctx context.Context, id int64) (FinancialStatement, error)
	ListItems(ctx context.Context, statementID int64) ([]FinancialStatementItem, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a generation transaction.
// Snapshotting accounts inside the same transaction keeps the statement
// internally consistent.
type TxRepository interface {
	InsertStatement(ctx context.Context, statementType string, periodStart, periodEnd time.Time) (FinancialStatement, error)
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	InsertItems(ctx context.Context, statementID int64, items []FinancialStatementItem) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed statements repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetStatement(ctx context.Context, id int64) (FinancialStatement, error) {
	var st FinancialStatement
	err := r.db.QueryRow(ctx, `SELECT id, statement_type, period_start, period_end, generated_at
FROM financial_statements WHERE id=$1`, id).
		Scan(&st.ID, &st.Type, &st.PeriodStart, &st.PeriodEnd, &st.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FinancialStatement{}, ErrStatementNotFound
		}
		return FinancialStatement{}, err
	}
	return st, nil
}

func (r *repository) ListItems(ctx context.Context, statementID int64) ([]FinancialStatementItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, financial_statement_id, account_id, amount
FROM financial_statement_items WHERE financial_statement_id=$1 ORDER BY id`, statementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FinancialStatementItem
	for rows.Next() {
		var item FinancialStatementItem
		if err := rows.Scan(&item.ID, &item.StatementID, &item.AccountID, &item.Amount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
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

func (r *txRepository) InsertStatement(ctx context.Context, statementType string, periodStart, periodEnd time.Time) (FinancialStatement, error) {
	st := FinancialStatement{
		Type:        statementType,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO financial_statements (statement_type, period_start, period_end)
VALUES ($1,$2,$3) RETURNING id, generated_at`, statementType, periodStart, periodEnd).
		Scan(&st.ID, &st.GeneratedAt)
	if err != nil {
		return FinancialStatement{}, err
	}
	return st, nil
}

func (r *txRepository) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, name, account_type, code, description, balance, is_active, created_at
FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []ledger.Account
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Code, &a.Description, &a.Balance, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *txRepository) InsertItems(ctx context.Context, statementID int64, items []FinancialStatementItem) error {
	for _, item := range items {
		if _, err := r.tx.Exec(ctx, `INSERT INTO financial_statement_items (financial_statement_id, account_id, amount)
VALUES ($1,$2,$3)`, statementID, item.AccountID, item.Amount); err != nil {
			return err
		}
	}
	return nil
}
