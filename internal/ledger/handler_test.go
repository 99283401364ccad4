package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/shared"
	_ "github.com/quillbooks/quillbooks/testing"
)

// ============================================================================
// MOCK DEPENDENCIES
// ============================================================================

type mockServiceForHandler struct {
	accounts     []Account
	createError  error
	postError    error
	journalError error
	lastInput    PostTransactionInput
}

func (m *mockServiceForHandler) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	if m.createError != nil {
		return Account{}, m.createError
	}
	return Account{ID: 7, Name: in.Name, Type: in.Type, Code: in.Code, Balance: in.InitialBalance}, nil
}

func (m *mockServiceForHandler) ListAccounts(ctx context.Context) ([]Account, error) {
	return m.accounts, nil
}

func (m *mockServiceForHandler) PostTransaction(ctx context.Context, in PostTransactionInput) (Transaction, error) {
	if m.postError != nil {
		return Transaction{}, m.postError
	}
	m.lastInput = in
	return Transaction{ID: 11, AccountID: in.AccountID, Amount: in.Amount, Type: in.Type}, nil
}

func (m *mockServiceForHandler) ConvertAndPostTransaction(ctx context.Context, in PostTransactionInput, fromCcy, toCcy string, rate decimal.Decimal) (Transaction, error) {
	in.Amount = in.Amount.Mul(rate).Round(2)
	return m.PostTransaction(ctx, in)
}

func (m *mockServiceForHandler) CreateJournalEntry(ctx context.Context, in CreateJournalEntryInput) (JournalEntry, error) {
	if m.journalError != nil {
		return JournalEntry{}, m.journalError
	}
	return JournalEntry{ID: 3, Description: in.Description}, nil
}

type mockIdempotencyGuard struct {
	seen    map[string]bool
	deleted []string
}

func newMockIdempotencyGuard() *mockIdempotencyGuard {
	return &mockIdempotencyGuard{seen: make(map[string]bool)}
}

func (m *mockIdempotencyGuard) CheckAndInsert(ctx context.Context, key, module string) error {
	if m.seen[key] {
		return shared.ErrIdempotencyConflict
	}
	m.seen[key] = true
	return nil
}

func (m *mockIdempotencyGuard) Delete(ctx context.Context, key string) error {
	delete(m.seen, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func newTestRouter(service LedgerService, idem IdempotencyGuard) chi.Router {
	h := NewHandler(slog.Default(), service, idem)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateAccountHandler(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/accounts",
		`{"name":"Cash","account_type":"Asset","code":"CASH-001","initial_balance":100}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Account created successfully", resp["message"])
	assert.EqualValues(t, 7, resp["account"])
}

func TestCreateAccountMissingFields(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/accounts", `{"name":"Cash"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "missing required fields", resp["error"])
}

func TestCreateAccountInvalidJSON(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/accounts", `{"name":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAccountCodeConflict(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{createError: ErrCodeConflict}, nil)

	rec := doJSON(t, router, http.MethodPost, "/accounts",
		`{"name":"Cash","account_type":"Asset","code":"CASH-001"}`, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListAccountsHandler(t *testing.T) {
	service := &mockServiceForHandler{accounts: []Account{
		{ID: 1, Name: "Cash", Type: AccountTypeAsset, Code: "CASH-001", Balance: decimal.NewFromFloat(1300.50)},
	}}
	router := newTestRouter(service, nil)

	rec := doJSON(t, router, http.MethodGet, "/accounts", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Cash", resp[0]["name"])
	assert.Equal(t, "Asset", resp[0]["account_type"])
	assert.EqualValues(t, 1300.50, resp[0]["balance"])
}

func TestListAccountsEmpty(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{}, nil)

	rec := doJSON(t, router, http.MethodGet, "/accounts", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestPostTransactionHandler(t *testing.T) {
	service := &mockServiceForHandler{}
	router := newTestRouter(service, nil)

	rec := doJSON(t, router, http.MethodPost, "/transactions",
		`{"account_id":1,"amount":500,"transaction_type":"debit"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Transaction posted successfully", resp["message"])
	assert.True(t, service.lastInput.Amount.Equal(decimal.NewFromInt(500)))
}

func TestPostTransactionAccountNotFound(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{postError: ErrAccountNotFound}, nil)

	rec := doJSON(t, router, http.MethodPost, "/transactions",
		`{"account_id":42,"amount":500,"transaction_type":"debit"}`, nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Account not found", resp["error"])
}

func TestPostTransactionInvalidTypeResponse(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{postError: ErrInvalidTransactionType}, nil)

	rec := doJSON(t, router, http.MethodPost, "/transactions",
		`{"account_id":1,"amount":500,"transaction_type":"transfer"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid transaction type", resp["error"])
}

func TestPostTransactionIdempotencyReplay(t *testing.T) {
	guard := newMockIdempotencyGuard()
	router := newTestRouter(&mockServiceForHandler{}, guard)
	headers := map[string]string{"X-Idempotency-Key": "abc-123"}
	body := `{"account_id":1,"amount":500,"transaction_type":"debit"}`

	first := doJSON(t, router, http.MethodPost, "/transactions", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)

	replay := doJSON(t, router, http.MethodPost, "/transactions", body, headers)
	assert.Equal(t, http.StatusConflict, replay.Code)
}

func TestPostTransactionReleasesKeyOnFailure(t *testing.T) {
	guard := newMockIdempotencyGuard()
	router := newTestRouter(&mockServiceForHandler{postError: ErrAccountNotFound}, guard)
	headers := map[string]string{"X-Idempotency-Key": "abc-123"}
	body := `{"account_id":42,"amount":500,"transaction_type":"debit"}`

	rec := doJSON(t, router, http.MethodPost, "/transactions", body, headers)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, guard.deleted, "abc-123")
}

func TestConvertTransactionHandler(t *testing.T) {
	service := &mockServiceForHandler{}
	router := newTestRouter(service, nil)

	rec := doJSON(t, router, http.MethodPost, "/transactions/convert",
		`{"account_id":1,"amount":100,"from_currency":"USD","to_currency":"EUR","exchange_rate":0.9,"transaction_type":"debit"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, service.lastInput.Amount.Equal(decimal.NewFromInt(90)))
}

func TestConvertTransactionUnsupportedCurrency(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/transactions/convert",
		`{"account_id":1,"amount":100,"from_currency":"DOGE","to_currency":"EUR","exchange_rate":0.9,"transaction_type":"debit"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unsupported currency code", resp["error"])
}

func TestCreateJournalEntryHandler(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/journal_entries",
		`{"description":"Cash sale","lines":[{"account_id":1,"debit":300},{"account_id":2,"credit":300}]}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Journal entry created successfully", resp["message"])
	assert.EqualValues(t, 3, resp["journal_entry"])
}

func TestCreateJournalEntryUnbalancedResponse(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{journalError: ErrUnbalanced}, nil)

	rec := doJSON(t, router, http.MethodPost, "/journal_entries",
		`{"description":"Broken","lines":[{"account_id":1,"debit":300},{"account_id":2,"credit":200}]}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Total debit and credit amounts must be equal", resp["error"])
}

func TestCreateJournalEntryRequiresLines(t *testing.T) {
	router := newTestRouter(&mockServiceForHandler{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/journal_entries",
		`{"description":"Empty","lines":[]}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
