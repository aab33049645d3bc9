package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/platewise/v1/internal/domain/plan"
	"github.com/platewise/v1/internal/infrastructure/persistence/memstore"
	"github.com/platewise/v1/pkg/errors"
	"github.com/platewise/v1/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockPlanner struct {
	mock.Mock
}

func (m *mockPlanner) BuildPlan(ctx context.Context, userID string, prefs plan.Preferences) (*plan.MealPlan, error) {
	args := m.Called(ctx, userID, prefs)
	if v := args.Get(0); v != nil {
		return v.(*plan.MealPlan), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreatePlanRequiresUser(t *testing.T) {
	h := NewPlanHandlers(new(mockPlanner), zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans",
		strings.NewReader(`{"days":3}`))
	rec := httptest.NewRecorder()
	h.CreatePlan(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlanInvalidJSON(t *testing.T) {
	h := NewPlanHandlers(new(mockPlanner), zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans",
		strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.CreatePlan(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlanNormalizesAliases(t *testing.T) {
	planner := new(mockPlanner)
	planner.On("BuildPlan", mock.Anything, "chat42", mock.MatchedBy(func(p plan.Preferences) bool {
		return p.Diet == "vegetarian" && p.Days == 3
	})).Return(&plan.MealPlan{PlanText: "Day 1: ..."}, nil)

	h := NewPlanHandlers(planner, zaptest.NewLogger(t))

	body := `{"chat_id":"chat42","days":3,"preferences":{"food_preference":"vegetarian"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreatePlan(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	planner.AssertExpectations(t)
}

func TestCreatePlanGroundingViolationStatus(t *testing.T) {
	planner := new(mockPlanner)
	planner.On("BuildPlan", mock.Anything, "u1", mock.Anything).
		Return(nil, errors.NewGroundingViolationError([]string{"r_fake"}, 20))

	h := NewPlanHandlers(planner, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans",
		strings.NewReader(`{"user_id":"u1","days":3}`))
	rec := httptest.NewRecorder()
	h.CreatePlan(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeGroundingViolation, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "r_fake")
}

func TestCreatePlanCorpusExhaustedStatus(t *testing.T) {
	planner := new(mockPlanner)
	planner.On("BuildPlan", mock.Anything, "u1", mock.Anything).
		Return(nil, errors.NewCorpusExhaustedError(10, 21))

	h := NewPlanHandlers(planner, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans",
		strings.NewReader(`{"user_id":"u1"}`))
	rec := httptest.NewRecorder()
	h.CreatePlan(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMemoryStoreValidation(t *testing.T) {
	h := NewMemoryHandlers(new(testutils.MockMemoryService), zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memory",
		strings.NewReader(`{"user_id":"u1"}`))
	rec := httptest.NewRecorder()
	h.Store(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemorySearchDefaultsTopK(t *testing.T) {
	memories := new(testutils.MockMemoryService)
	memories.On("Retrieve", mock.Anything, "u1", "spicy", 6).
		Return([]string{"Likes spicy food"}, nil)

	h := NewMemoryHandlers(memories, zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memory/search",
		strings.NewReader(`{"user_id":"u1","query":"spicy"}`))
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Likes spicy food"}, resp.Results)
	memories.AssertExpectations(t)
}

func userRouter(h *UserHandlers) http.Handler {
	r := chi.NewRouter()
	r.Put("/users/{id}/preferences", h.PutPreferences)
	r.Get("/users/{id}/preferences", h.GetPreferences)
	r.Put("/users/{id}/location", h.PutLocation)
	r.Get("/users/{id}/location", h.GetLocation)
	return r
}

func TestUserPreferencesRoundTrip(t *testing.T) {
	h := NewUserHandlers(memstore.NewStore(), 0, zaptest.NewLogger(t))
	router := userRouter(h)

	put := httptest.NewRequest(http.MethodPut, "/users/u1/preferences",
		strings.NewReader(`{"diet":"keto"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, put)
	require.Equal(t, http.StatusOK, rec.Code)

	get := httptest.NewRequest(http.MethodGet, "/users/u1/preferences", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, get)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"diet":"keto"}`, rec.Body.String())
}

func TestUserPreferencesNotFound(t *testing.T) {
	h := NewUserHandlers(memstore.NewStore(), 0, zaptest.NewLogger(t))
	router := userRouter(h)

	get := httptest.NewRequest(http.MethodGet, "/users/nobody/preferences", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, get)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroceryFormatPreservesItems(t *testing.T) {
	chat := new(testutils.MockChatService)
	chat.On("Complete", mock.Anything, mock.Anything, mock.Anything, false).
		Return("Produce:\n- 5 egg\n- 6 tortillas", nil)

	h := NewGroceryHandlers(chat, zaptest.NewLogger(t))

	body := `{"items":[{"name":"egg","qty":5,"unit":"count"},{"name":"tortillas","qty":6,"unit":"count"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/grocery/format", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Format(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp FormatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.NotEmpty(t, resp.Text)
}
