package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes registers ledger endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/accounts", h.CreateAccount)
	r.Get("/accounts", h.ListAccounts)
	r.Post("/transactions", h.PostTransaction)
	r.Post("/transactions/convert", h.ConvertAndPostTransaction)
	r.Post("/journal_entries", h.CreateJournalEntry)
}
