package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/platewise/v1/internal/ports/outbound"
	"github.com/platewise/v1/pkg/errors"
	"go.uber.org/zap"
)

const maxUserPayload = 64 << 10

// UserHandlers stores raw per-user payloads in the key-value store.
// The payloads are opaque to the pipeline; plan requests carry their
// own preferences inline.
type UserHandlers struct {
	store  outbound.KeyValueStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserHandlers creates the user KV handlers.
func NewUserHandlers(store outbound.KeyValueStore, ttl time.Duration, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{store: store, ttl: ttl, logger: logger.Named("users")}
}

func preferencesKey(userID string) string { return fmt.Sprintf("user:%s:preferences", userID) }
func locationKey(userID string) string    { return fmt.Sprintf("user:%s:location", userID) }

// PutPreferences handles PUT /api/v1/users/{id}/preferences.
func (h *UserHandlers) PutPreferences(w http.ResponseWriter, r *http.Request) {
	h.put(w, r, preferencesKey(chi.URLParam(r, "id")))
}

// GetPreferences handles GET /api/v1/users/{id}/preferences.
func (h *UserHandlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, preferencesKey(chi.URLParam(r, "id")))
}

// PutLocation handles PUT /api/v1/users/{id}/location.
func (h *UserHandlers) PutLocation(w http.ResponseWriter, r *http.Request) {
	h.put(w, r, locationKey(chi.URLParam(r, "id")))
}

// GetLocation handles GET /api/v1/users/{id}/location.
func (h *UserHandlers) GetLocation(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, locationKey(chi.URLParam(r, "id")))
}

func (h *UserHandlers) put(w http.ResponseWriter, r *http.Request, key string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUserPayload))
	if err != nil {
		writeBadRequest(w, r, "Failed to read body")
		return
	}
	if len(body) == 0 {
		writeBadRequest(w, r, "Body is required")
		return
	}

	if err := h.store.Set(r.Context(), key, string(body), h.ttl); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *UserHandlers) get(w http.ResponseWriter, r *http.Request, key string) {
	value, err := h.store.Get(r.Context(), key)
	if err == outbound.ErrKeyNotFound {
		writeError(w, r, errors.NewNotFoundError("user data"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(value))
}
