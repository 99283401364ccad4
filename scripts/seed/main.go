// Command seed creates a starter chart of accounts against a running
// database. Account codes are generated from the account names.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/quillbooks/quillbooks/internal/app"
	"github.com/quillbooks/quillbooks/internal/ledger"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	service := ledger.NewService(ledger.NewRepository(pool), nil)

	seedAccounts := []ledger.CreateAccountInput{
		{Name: "Cash", Type: ledger.AccountTypeAsset},
		{Name: "Accounts Receivable", Type: ledger.AccountTypeAsset},
		{Name: "Accounts Payable", Type: ledger.AccountTypeLiability},
		{Name: "Owner Equity", Type: ledger.AccountTypeEquity},
		{Name: "Sales Revenue", Type: ledger.AccountTypeRevenue},
		{Name: "Operating Expenses", Type: ledger.AccountTypeExpense},
	}
	for _, in := range seedAccounts {
		account, err := service.CreateAccount(ctx, in)
		if err != nil {
			logger.Error("seed account", slog.String("name", in.Name), slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("seeded account", slog.String("name", account.Name), slog.String("code", account.Code))
	}
}
