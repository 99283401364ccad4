package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OverdueStore marks unpaid invoices past their due date as overdue.
type OverdueStore interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// PGOverdueStore implements OverdueStore against Postgres.
type PGOverdueStore struct {
	pool *pgxpool.Pool
}

// NewPGOverdueStore constructs the store.
func NewPGOverdueStore(pool *pgxpool.Pool) *PGOverdueStore {
	return &PGOverdueStore{pool: pool}
}

// MarkOverdue flips qualifying invoices and reports how many changed.
func (s *PGOverdueStore) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	cmd, err := s.pool.Exec(ctx, `UPDATE invoices SET status='overdue' WHERE status='unpaid' AND due_date < $1`, asOf)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// OverdueJob runs the invoice overdue sweep.
type OverdueJob struct {
	store  OverdueStore
	logger *slog.Logger
	now    func() time.Time
}

// NewOverdueJob constructs the job.
func NewOverdueJob(store OverdueStore, logger *slog.Logger) *OverdueJob {
	return &OverdueJob{store: store, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (j *OverdueJob) WithNow(now func() time.Time) {
	if now != nil {
		j.now = now
	}
}

// Handle processes TaskInvoiceOverdue tasks.
func (j *OverdueJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload InvoiceOverduePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = j.now()
	}
	count, err := j.store.MarkOverdue(ctx, asOf)
	if err != nil {
		return err
	}
	j.logger.Info("invoice overdue sweep complete", slog.Int64("flipped", count))
	return nil
}
