package handlers

import (
	"net/http"

	"github.com/platewise/v1/internal/infrastructure/weather"
	"github.com/platewise/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// WeatherHandlers produces temperature-aware meal suggestions.
type WeatherHandlers struct {
	weather outbound.WeatherService
	store   outbound.KeyValueStore
	logger  *zap.Logger
}

// NewWeatherHandlers creates the weather handlers.
func NewWeatherHandlers(ws outbound.WeatherService, store outbound.KeyValueStore, logger *zap.Logger) *WeatherHandlers {
	return &WeatherHandlers{weather: ws, store: store, logger: logger.Named("weather")}
}

// SuggestionResponse carries the current temperature and meal hint.
type SuggestionResponse struct {
	Success    bool    `json:"success"`
	Location   string  `json:"location"`
	TempC      float64 `json:"temp_c"`
	Suggestion string  `json:"suggestion"`
}

// Suggestion handles GET /api/v1/weather/suggestion. The location comes
// from the query, falling back to the user's stored location.
func (h *WeatherHandlers) Suggestion(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			stored, err := h.store.Get(r.Context(), locationKey(userID))
			if err == nil {
				location = stored
			}
		}
	}
	if location == "" {
		writeBadRequest(w, r, "location or user_id with a stored location is required")
		return
	}

	tempC, err := h.weather.CurrentTempC(r.Context(), location)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SuggestionResponse{
		Success:    true,
		Location:   location,
		TempC:      tempC,
		Suggestion: weather.Suggestion(tempC),
	})
}
