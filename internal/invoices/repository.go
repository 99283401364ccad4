package invoices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository encapsulates DB operations for invoices.
type Repository interface {
	List(ctx context.Context) ([]Invoice, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	ListLineItems(ctx context.Context, invoiceID int64) ([]LineItem, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error)
	InsertLineItems(ctx context.Context, invoiceID int64, items []LineItem) error
	GetInvoiceForUpdate(ctx context.Context, id int64) (Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status InvoiceStatus) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed invoices repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const invoiceColumns = `id, invoice_number, date_issued, due_date, client_name, client_email, total_amount, status`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.DateIssued, &inv.DueDate, &inv.ClientName, &inv.ClientEmail, &inv.TotalAmount, &inv.Status)
	return inv, err
}

func (r *repository) List(ctx context.Context) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) ListLineItems(ctx context.Context, invoiceID int64) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, invoice_id, description, quantity, unit_price, total_price
FROM invoice_line_items WHERE invoice_id=$1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LineItem
	for rows.Next() {
		var item LineItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
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

func (r *txRepository) InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO invoices (invoice_number, date_issued, due_date, client_name, client_email, total_amount, status)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		inv.Number, inv.DateIssued, inv.DueDate, inv.ClientName, inv.ClientEmail, inv.TotalAmount, inv.Status).
		Scan(&inv.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Invoice{}, ErrNumberConflict
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *txRepository) InsertLineItems(ctx context.Context, invoiceID int64, items []LineItem) error {
	for _, item := range items {
		if _, err := r.tx.Exec(ctx, `INSERT INTO invoice_line_items (invoice_id, description, quantity, unit_price, total_price)
VALUES ($1,$2,$3,$4,$5)`, invoiceID, item.Description, item.Quantity, item.UnitPrice, item.TotalPrice); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetInvoiceForUpdate(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *txRepository) UpdateStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE invoices SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}
