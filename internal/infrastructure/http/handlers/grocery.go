package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/platewise/v1/internal/domain/grocery"
	"github.com/platewise/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// GroceryHandlers formats grocery lists for human reading. The model
// output here is presentational only; the aggregated list itself is
// computed deterministically during planning.
type GroceryHandlers struct {
	chat   outbound.ChatService
	logger *zap.Logger
}

// NewGroceryHandlers creates the grocery handlers.
func NewGroceryHandlers(chat outbound.ChatService, logger *zap.Logger) *GroceryHandlers {
	return &GroceryHandlers{chat: chat, logger: logger.Named("grocery")}
}

// FormatRequest carries an aggregated grocery list to present.
type FormatRequest struct {
	Items []grocery.Item `json:"items"`
}

// FormatResponse carries the formatted text alongside the unchanged
// input items.
type FormatResponse struct {
	Success bool           `json:"success"`
	Text    string         `json:"text"`
	Items   []grocery.Item `json:"items"`
}

const formatSystemPrompt = "You format grocery lists as clean plain text grouped by category. Do not add, remove, or change any item or quantity."

// Format handles POST /api/v1/grocery/format.
func (h *GroceryHandlers) Format(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "Invalid JSON payload")
		return
	}
	if len(req.Items) == 0 {
		writeBadRequest(w, r, "items are required")
		return
	}

	payload, err := json.Marshal(req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}

	text, err := h.chat.Complete(r.Context(), formatSystemPrompt, string(payload), false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, FormatResponse{Success: true, Text: text, Items: req.Items})
}
