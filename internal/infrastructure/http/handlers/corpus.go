package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/platewise/v1/internal/domain/plan"
	"github.com/platewise/v1/internal/ports/inbound"
	"go.uber.org/zap"
)

// CorpusHandlers handles recipe corpus requests.
type CorpusHandlers struct {
	corpus   inbound.CorpusService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCorpusHandlers creates the corpus handlers.
func NewCorpusHandlers(corpus inbound.CorpusService, logger *zap.Logger) *CorpusHandlers {
	return &CorpusHandlers{
		corpus:   corpus,
		validate: validator.New(),
		logger:   logger.Named("corpus"),
	}
}

// GenerateRequest is the generate-and-store request body.
type GenerateRequest struct {
	UserID      string         `json:"user_id" validate:"required"`
	Count       int            `json:"count" validate:"min=1,max=100"`
	Preferences map[string]any `json:"preferences"`
}

// GenerateResponse reports how many cards were generated and stored.
type GenerateResponse struct {
	Success   bool `json:"success"`
	Generated int  `json:"generated"`
	Stored    int  `json:"stored"`
}

// Generate handles POST /api/v1/recipes/generate: produce a batch of
// recipe cards and write them through to the index.
func (h *CorpusHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "Invalid JSON payload")
		return
	}
	if req.Count == 0 {
		req.Count = 20
	}
	if err := h.validate.Struct(req); err != nil {
		writeBadRequest(w, r, "user_id is required and count must be 1-100")
		return
	}

	prefs := plan.NormalizePreferences(req.Preferences)

	cards, err := h.corpus.Generate(r.Context(), prefs, req.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// IDs are per-user so stored cards retrieve for this user only.
	ts := time.Now().UnixMilli()
	for i := range cards {
		cards[i].ID = fmt.Sprintf("r_%s_%d_%d", req.UserID, ts, i)
	}

	stored, err := h.corpus.Persist(r.Context(), req.UserID, cards)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.logger.Info("Corpus batch generated",
		zap.String("user_id", req.UserID),
		zap.Int("generated", len(cards)),
		zap.Int("stored", stored),
	)
	writeJSON(w, http.StatusOK, GenerateResponse{Success: true, Generated: len(cards), Stored: stored})
}
