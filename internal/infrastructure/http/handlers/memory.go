package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/platewise/v1/internal/domain/memory"
	"github.com/platewise/v1/internal/ports/inbound"
	"go.uber.org/zap"
)

// MemoryHandlers handles user memory requests.
type MemoryHandlers struct {
	memories inbound.MemoryService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMemoryHandlers creates the memory handlers.
func NewMemoryHandlers(memories inbound.MemoryService, logger *zap.Logger) *MemoryHandlers {
	return &MemoryHandlers{
		memories: memories,
		validate: validator.New(),
		logger:   logger.Named("memory"),
	}
}

// StoreRequest is the memory add request body.
type StoreRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Text   string `json:"text" validate:"required"`
	Type   string `json:"type"`
}

// StoreResponse reports the stored fact ID; empty when the index is
// disabled and the write was skipped.
type StoreResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

// Store handles POST /api/v1/memory.
func (h *MemoryHandlers) Store(w http.ResponseWriter, r *http.Request) {
	var req StoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeBadRequest(w, r, "user_id and text are required")
		return
	}

	id, err := h.memories.Store(r.Context(), req.UserID, req.Text, memory.FactType(req.Type))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StoreResponse{Success: true, ID: id})
}

// SearchRequest is the memory search request body.
type SearchRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Query  string `json:"query" validate:"required"`
	TopK   int    `json:"top_k"`
}

// SearchResponse carries the matched fact texts, best first.
type SearchResponse struct {
	Success bool     `json:"success"`
	Results []string `json:"results"`
}

// Search handles POST /api/v1/memory/search.
func (h *MemoryHandlers) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeBadRequest(w, r, "user_id and query are required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = 6
	}

	results, err := h.memories.Retrieve(r.Context(), req.UserID, req.Query, req.TopK)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []string{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Success: true, Results: results})
}
