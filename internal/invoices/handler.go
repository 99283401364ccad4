package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/shared"
)

// InvoiceService defines the operations consumed by the HTTP layer.
type InvoiceService interface {
	Create(ctx context.Context, in CreateInvoiceInput) (Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	MarkPaid(ctx context.Context, id int64) (Invoice, error)
}

// Handler wires the invoice JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  InvoiceService
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service InvoiceService) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers invoice endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/invoices", h.Create)
	r.Get("/invoices", h.List)
	r.Get("/invoices/{id}", h.Get)
	r.Post("/invoices/{id}/pay", h.MarkPaid)
}

type lineItemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createInvoiceRequest struct {
	InvoiceNumber string            `json:"invoice_number"`
	ClientName    string            `json:"client_name" validate:"required"`
	ClientEmail   string            `json:"client_email"`
	DueDate       string            `json:"due_date" validate:"required"`
	LineItems     []lineItemRequest `json:"line_items" validate:"required,min=1,dive"`
}

type lineItemResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type invoiceResponse struct {
	ID          int64              `json:"id"`
	Number      string             `json:"invoice_number"`
	DateIssued  string             `json:"date_issued"`
	DueDate     string             `json:"due_date"`
	ClientName  string             `json:"client_name"`
	ClientEmail string             `json:"client_email,omitempty"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Status      InvoiceStatus      `json:"status"`
	LineItems   []lineItemResponse `json:"line_items,omitempty"`
}

func toInvoiceResponse(inv Invoice) invoiceResponse {
	out := invoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		DateIssued:  shared.FormatDatetime(inv.DateIssued, shared.DateLayout),
		DueDate:     shared.FormatDatetime(inv.DueDate, shared.DateLayout),
		ClientName:  inv.ClientName,
		ClientEmail: inv.ClientEmail,
		TotalAmount: inv.TotalAmount,
		Status:      inv.Status,
	}
	for _, item := range inv.LineItems {
		out.LineItems = append(out.LineItems, lineItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return out
}

// Create handles POST /invoices.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	dueDate, ok := shared.ParseDatetime(req.DueDate, shared.DateLayout)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD")
		return
	}
	items := make([]LineItemInput, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		items = append(items, LineItemInput{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
		})
	}
	invoice, err := h.service.Create(r.Context(), CreateInvoiceInput{
		Number:      req.InvoiceNumber,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		DueDate:     dueDate,
		LineItems:   items,
	})
	if err != nil {
		h.respondServiceError(w, "create invoice", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "Invoice created successfully",
		"invoice": invoice.ID,
	})
}

// List handles GET /invoices.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.List(r.Context())
	if err != nil {
		h.respondServiceError(w, "list invoices", err)
		return
	}
	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	shared.RespondJSON(w, http.StatusOK, out)
}

// Get handles GET /invoices/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get invoice", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toInvoiceResponse(invoice))
}

// MarkPaid handles POST /invoices/{id}/pay.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	invoice, err := h.service.MarkPaid(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "mark invoice paid", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Invoice marked as paid",
		"invoice": invoice.ID,
	})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusNotFound, "Invoice not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNotFound):
		shared.RespondError(w, http.StatusNotFound, "Invoice not found")
	case errors.Is(err, ErrInvalidEmail):
		shared.RespondError(w, http.StatusBadRequest, "Invalid client email")
	case errors.Is(err, ErrNoLineItems):
		shared.RespondError(w, http.StatusBadRequest, "Invoice requires at least one line item")
	case errors.Is(err, ErrInvalidStatus):
		shared.RespondError(w, http.StatusBadRequest, "Invoice is already paid")
	case errors.Is(err, ErrNumberConflict):
		shared.RespondError(w, http.StatusConflict, "Invoice number already exists")
	default:
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
