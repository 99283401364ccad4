package shared

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

func init() {
	// Monetary fields serialize as JSON numbers across the whole API.
	decimal.MarshalJSONWithoutQuotes = true
}

// RespondJSON writes a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RespondError writes a JSON error body with the given status code.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}
