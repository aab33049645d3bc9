package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/platewise/v1/internal/domain/plan"
	"github.com/platewise/v1/internal/ports/inbound"
	"go.uber.org/zap"
)

// PlanHandlers handles meal plan requests.
type PlanHandlers struct {
	planner  inbound.PlannerService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPlanHandlers creates the plan handlers.
func NewPlanHandlers(planner inbound.PlannerService, logger *zap.Logger) *PlanHandlers {
	return &PlanHandlers{
		planner:  planner,
		validate: validator.New(),
		logger:   logger.Named("plans"),
	}
}

// PlanResponse is the successful plan payload.
type PlanResponse struct {
	Success bool           `json:"success"`
	Plan    *plan.MealPlan `json:"plan"`
}

// CreatePlan handles POST /api/v1/plans. The body is tolerant: user id,
// days, and preference fields may appear at the top level or nested
// under "preferences", under any of their historical aliases.
func (h *PlanHandlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeBadRequest(w, r, "Invalid JSON payload")
		return
	}

	req := requestFromRaw(raw)
	userID := req.ResolveUserID()
	if userID == "" {
		writeBadRequest(w, r, "user_id or chat_id is required")
		return
	}

	prefs := plan.NormalizeRequest(req)
	if err := h.validate.Struct(prefs); err != nil {
		writeBadRequest(w, r, "days must be at least 1")
		return
	}

	h.logger.Info("Plan requested",
		zap.String("user_id", userID),
		zap.Int("days", prefs.Days),
	)

	mealPlan, err := h.planner.BuildPlan(r.Context(), userID, prefs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PlanResponse{Success: true, Plan: mealPlan})
}

// requestFromRaw splits the decoded body into the envelope fields and
// the flat legacy remainder.
func requestFromRaw(raw map[string]any) plan.Request {
	req := plan.Request{Extra: raw}
	if s, ok := raw["user_id"].(string); ok {
		req.UserID = s
	}
	if s, ok := raw["chat_id"].(string); ok {
		req.ChatID = s
	}
	if d, ok := raw["days"].(float64); ok {
		req.Days = int(d)
	}
	if p, ok := raw["preferences"].(map[string]any); ok {
		req.Preferences = p
	}
	return req
}
