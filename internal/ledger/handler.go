package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/fx"
	"github.com/quillbooks/quillbooks/internal/shared"
)

// LedgerService defines the core operations consumed by the HTTP layer.
type LedgerService interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	PostTransaction(ctx context.Context, in PostTransactionInput) (Transaction, error)
	ConvertAndPostTransaction(ctx context.Context, in PostTransactionInput, fromCcy, toCcy string, rate decimal.Decimal) (Transaction, error)
	CreateJournalEntry(ctx context.Context, in CreateJournalEntryInput) (JournalEntry, error)
}

// IdempotencyGuard deduplicates posting requests carrying an
// X-Idempotency-Key header.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Handler wires the ledger JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  LedgerService
	idem     IdempotencyGuard
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service LedgerService, idem IdempotencyGuard) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		idem:     idem,
		validate: validator.New(),
	}
}

type createAccountRequest struct {
	Name           string          `json:"name" validate:"required"`
	AccountType    string          `json:"account_type" validate:"required"`
	Code           string          `json:"code" validate:"required"`
	Description    string          `json:"description"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type postTransactionRequest struct {
	AccountID       int64            `json:"account_id" validate:"required"`
	Amount          *decimal.Decimal `json:"amount" validate:"required"`
	TransactionType string           `json:"transaction_type" validate:"required"`
	Description     string           `json:"description"`
}

type convertTransactionRequest struct {
	AccountID       int64            `json:"account_id" validate:"required"`
	Amount          *decimal.Decimal `json:"amount" validate:"required"`
	FromCurrency    string           `json:"from_currency" validate:"required"`
	ToCurrency      string           `json:"to_currency" validate:"required"`
	ExchangeRate    *decimal.Decimal `json:"exchange_rate" validate:"required"`
	TransactionType string           `json:"transaction_type" validate:"required"`
	Description     string           `json:"description"`
}

type journalLineRequest struct {
	AccountID int64           `json:"account_id" validate:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

type createJournalEntryRequest struct {
	Description string               `json:"description" validate:"required"`
	Reference   string               `json:"reference"`
	Lines       []journalLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type accountResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	AccountType string          `json:"account_type"`
	Code        string          `json:"code"`
	Balance     decimal.Decimal `json:"balance"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "missing required fields")
		return false
	}
	return true
}

// CreateAccount handles POST /accounts.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.service.CreateAccount(r.Context(), CreateAccountInput{
		Name:           req.Name,
		Type:           AccountType(req.AccountType),
		Code:           req.Code,
		InitialBalance: req.InitialBalance,
		Description:    req.Description,
	})
	if err != nil {
		h.respondServiceError(w, "create account", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully",
		"account": account.ID,
	})
}

// ListAccounts handles GET /accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.respondServiceError(w, "list accounts", err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountResponse{
			ID:          a.ID,
			Name:        a.Name,
			AccountType: string(a.Type),
			Code:        a.Code,
			Balance:     a.Balance,
		})
	}
	shared.RespondJSON(w, http.StatusOK, out)
}

// PostTransaction handles POST /transactions.
func (h *Handler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	var req postTransactionRequest
	if !h.decode(w, r, &req) {
		return
	}
	key, ok := h.claimIdempotencyKey(w, r)
	if !ok {
		return
	}
	txn, err := h.service.PostTransaction(r.Context(), PostTransactionInput{
		AccountID:   req.AccountID,
		Amount:      *req.Amount,
		Type:        TransactionType(req.TransactionType),
		Description: req.Description,
	})
	if err != nil {
		h.releaseIdempotencyKey(r.Context(), key)
		h.respondServiceError(w, "post transaction", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":     "Transaction posted successfully",
		"transaction": txn.ID,
	})
}

// ConvertAndPostTransaction handles POST /transactions/convert. Currency
// codes are checked against the supported sample at the edge; the conversion
// itself trusts the caller's rate.
func (h *Handler) ConvertAndPostTransaction(w http.ResponseWriter, r *http.Request) {
	var req convertTransactionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !fx.IsValidCode(req.FromCurrency) || !fx.IsValidCode(req.ToCurrency) {
		shared.RespondError(w, http.StatusBadRequest, "unsupported currency code")
		return
	}
	key, ok := h.claimIdempotencyKey(w, r)
	if !ok {
		return
	}
	txn, err := h.service.ConvertAndPostTransaction(r.Context(), PostTransactionInput{
		AccountID:   req.AccountID,
		Amount:      *req.Amount,
		Type:        TransactionType(req.TransactionType),
		Description: req.Description,
	}, req.FromCurrency, req.ToCurrency, *req.ExchangeRate)
	if err != nil {
		h.releaseIdempotencyKey(r.Context(), key)
		h.respondServiceError(w, "convert and post transaction", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":     "Transaction posted successfully",
		"transaction": txn.ID,
	})
}

// CreateJournalEntry handles POST /journal_entries.
func (h *Handler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req createJournalEntryRequest
	if !h.decode(w, r, &req) {
		return
	}
	lines := make([]JournalLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, JournalLineInput{
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
		})
	}
	key, ok := h.claimIdempotencyKey(w, r)
	if !ok {
		return
	}
	entry, err := h.service.CreateJournalEntry(r.Context(), CreateJournalEntryInput{
		Description: req.Description,
		Reference:   req.Reference,
		Lines:       lines,
	})
	if err != nil {
		h.releaseIdempotencyKey(r.Context(), key)
		h.respondServiceError(w, "create journal entry", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":       "Journal entry created successfully",
		"journal_entry": entry.ID,
	})
}

func (h *Handler) claimIdempotencyKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.Header.Get("X-Idempotency-Key")
	if key == "" || h.idem == nil {
		return "", true
	}
	if err := h.idem.CheckAndInsert(r.Context(), key, "ledger"); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			shared.RespondError(w, http.StatusConflict, "request already processed")
			return "", false
		}
		h.logger.Error("idempotency check", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return "", false
	}
	return key, true
}

func (h *Handler) releaseIdempotencyKey(ctx context.Context, key string) {
	if key == "" || h.idem == nil {
		return
	}
	if err := h.idem.Delete(ctx, key); err != nil {
		h.logger.Warn("idempotency release", slog.Any("error", err))
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		shared.RespondError(w, http.StatusNotFound, "Account not found")
	case errors.Is(err, ErrInvalidTransactionType):
		shared.RespondError(w, http.StatusBadRequest, "Invalid transaction type")
	case errors.Is(err, ErrUnbalanced):
		shared.RespondError(w, http.StatusBadRequest, "Total debit and credit amounts must be equal")
	case errors.Is(err, ErrNoLines):
		shared.RespondError(w, http.StatusBadRequest, "Journal entry requires at least one line")
	case errors.Is(err, ErrCodeConflict):
		shared.RespondError(w, http.StatusConflict, "Account code already exists")
	default:
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
