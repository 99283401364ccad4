package statements

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quillbooks/quillbooks/internal/shared"
)

// AuditPort records statement events for the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service generates and serves financial statement snapshots.
type Service struct {
	repo   Repository
	cache  *Cache
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the statements service. The cache may be nil.
func NewService(repo Repository, cache *Cache, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Generate persists a statement header and one item per qualifying account,
// all in one transaction. Item amounts are the accounts' balances at
// generation time: the statement is a present-tense snapshot labeled with the
// requested period, not a historical reconstruction as of period end.
func (s *Service) Generate(ctx context.Context, statementType string, periodStart, periodEnd time.Time) (FinancialStatement, error) {
	var statement FinancialStatement
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertStatement(ctx, statementType, periodStart, periodEnd)
		if err != nil {
			return err
		}
		accounts, err := tx.ListAccounts(ctx)
		if err != nil {
			return err
		}
		items := BuildItems(statementType, accounts)
		if len(items) > 0 {
			if err := tx.InsertItems(ctx, inserted.ID, items); err != nil {
				return err
			}
		}
		statement = inserted
		return nil
	})
	if err != nil {
		return FinancialStatement{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   shared.AuditStatementGenerate,
			Entity:   "financial_statement",
			EntityID: fmt.Sprintf("%d", statement.ID),
			Meta: map[string]any{
				"statement_type": statementType,
				"period_start":   periodStart.Format(shared.DateLayout),
				"period_end":     periodEnd.Format(shared.DateLayout),
			},
			At: s.now(),
		})
	}
	return statement, nil
}

// Get assembles the read view of a statement: header metadata plus its item
// lines. Views are served from the cache when possible; header and items are
// fetched in parallel on a miss.
func (s *Service) Get(ctx context.Context, id int64) (View, error) {
	if view, ok := s.cache.Get(ctx, id); ok {
		return view, nil
	}

	var statement FinancialStatement
	var items []FinancialStatementItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statement, err = s.repo.GetStatement(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.ListItems(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	view := View{
		ID:            statement.ID,
		StatementType: statement.Type,
		PeriodStart:   statement.PeriodStart.Format(shared.DateLayout),
		PeriodEnd:     statement.PeriodEnd.Format(shared.DateLayout),
		Items:         make([]ItemView, 0, len(items)),
	}
	for _, item := range items {
		view.Items = append(view.Items, ItemView{AccountID: item.AccountID, Amount: item.Amount})
	}
	if err := s.cache.Set(ctx, view); err != nil && s.logger != nil {
		s.logger.Warn("cache statement view", slog.Any("error", err))
	}
	return view, nil
}
