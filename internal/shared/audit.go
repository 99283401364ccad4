package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditAction names a recorded mutation as a dotted entity.verb pair, which
// keeps the audit_logs table filterable by prefix.
type AuditAction string

const (
	AuditAccountCreate     AuditAction = "account.create"
	AuditTransactionPost   AuditAction = "transaction.post"
	AuditJournalPost       AuditAction = "journal.post"
	AuditStatementGenerate AuditAction = "statement.generate"
	AuditInvoiceCreate     AuditAction = "invoice.create"
	AuditInvoicePaid       AuditAction = "invoice.paid"
)

// AuditLog is one immutable row of the audit trail. ActorID stays zero until
// request authentication exists; Meta carries the action-specific detail.
type AuditLog struct {
	ActorID  int64
	Action   AuditAction
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditLogger appends rows to audit_logs. Services treat recording as
// fire-and-forget, so persistence failures are logged here rather than
// bubbled into the request path.
type AuditLogger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAuditLogger constructs the logger. A nil slog.Logger suppresses failure
// logging but still returns errors to callers that want them.
func NewAuditLogger(pool *pgxpool.Pool, logger *slog.Logger) *AuditLogger {
	return &AuditLogger{pool: pool, logger: logger}
}

// Record appends one row. A zero At defers to the database clock.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("shared: audit log requires action, entity and entity id")
	}
	if l == nil || l.pool == nil {
		return errors.New("shared: audit logger not initialised")
	}
	meta, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at)
VALUES ($1,$2,$3,$4,$5,COALESCE($6, NOW()))`,
		log.ActorID, log.Action, log.Entity, log.EntityID, meta, nullTime(log.At))
	if err != nil && l.logger != nil {
		l.logger.Warn("audit record failed",
			slog.String("action", string(log.Action)),
			slog.String("entity", log.Entity),
			slog.Any("error", err),
		)
	}
	return err
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
