package statements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quillbooks/quillbooks/internal/shared"
)

// StatementService defines the operations consumed by the HTTP layer.
type StatementService interface {
	Generate(ctx context.Context, statementType string, periodStart, periodEnd time.Time) (FinancialStatement, error)
	Get(ctx context.Context, id int64) (View, error)
}

// Handler wires the financial statement JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  StatementService
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service StatementService) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers statement endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/financial_statements", h.Generate)
	r.Get("/financial_statements/{id}", h.Get)
}

type generateStatementRequest struct {
	StatementType string `json:"statement_type" validate:"required"`
	PeriodStart   string `json:"period_start" validate:"required"`
	PeriodEnd     string `json:"period_end" validate:"required"`
}

// Generate handles POST /financial_statements.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	periodStart, ok := shared.ParseDatetime(req.PeriodStart, shared.DateLayout)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "period_start must be YYYY-MM-DD")
		return
	}
	periodEnd, ok := shared.ParseDatetime(req.PeriodEnd, shared.DateLayout)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "period_end must be YYYY-MM-DD")
		return
	}
	statement, err := h.service.Generate(r.Context(), req.StatementType, periodStart, periodEnd)
	if err != nil {
		h.logger.Error("generate statement", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":             fmt.Sprintf("%s generated successfully", req.StatementType),
		"financial_statement": statement.ID,
	})
}

// Get handles GET /financial_statements/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusNotFound, "Financial statement not found")
		return
	}
	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrStatementNotFound) {
			shared.RespondError(w, http.StatusNotFound, "Financial statement not found")
			return
		}
		h.logger.Error("get statement", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.RespondJSON(w, http.StatusOK, view)
}
