package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/quillbooks/quillbooks/internal/invoices"
	"github.com/quillbooks/quillbooks/internal/ledger"
	"github.com/quillbooks/quillbooks/internal/observability"
	"github.com/quillbooks/quillbooks/internal/statements"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	LedgerHandler     *ledger.Handler
	StatementsHandler *statements.Handler
	InvoicesHandler   *invoices.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Quillbooks defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.LedgerHandler != nil {
		params.LedgerHandler.MountRoutes(r)
	}
	if params.StatementsHandler != nil {
		params.StatementsHandler.MountRoutes(r)
	}
	if params.InvoicesHandler != nil {
		params.InvoicesHandler.MountRoutes(r)
	}

	return r
}
