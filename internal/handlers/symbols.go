package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jwaldner/callwriter/internal/symbols"
)

// SymbolDirectory is the slice of the symbol directory the HTTP layer needs.
type SymbolDirectory interface {
	Search(ctx context.Context, query string) []symbols.Symbol
}

// SymbolsHandler serves the ticker picker's constituent list.
type SymbolsHandler struct {
	directory SymbolDirectory
}

func NewSymbolsHandler(directory SymbolDirectory) *SymbolsHandler {
	return &SymbolsHandler{directory: directory}
}

// List handles GET /api/symbols with an optional q= substring filter.
func (h *SymbolsHandler) List(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	matched := h.directory.Search(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbols":   matched,
		"count":     len(matched),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
