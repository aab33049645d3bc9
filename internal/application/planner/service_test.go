package planner

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/platewise/v1/internal/domain/plan"
	"github.com/platewise/v1/internal/domain/recipe"
	"github.com/platewise/v1/internal/infrastructure/monitoring"
	"github.com/platewise/v1/pkg/errors"
	"github.com/platewise/v1/test/testutils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMinNeeded(t *testing.T) {
	assert.Equal(t, 12, MinNeeded(1))
	assert.Equal(t, 12, MinNeeded(4))
	assert.Equal(t, 15, MinNeeded(5))
	assert.Equal(t, 21, MinNeeded(7))
	assert.Equal(t, 30, MinNeeded(10))
	assert.Equal(t, 30, MinNeeded(14))
}

func poolCandidates(prefix string, n int) []recipe.Candidate {
	out := make([]recipe.Candidate, n)
	for i := range out {
		out[i] = cand(
			fmt.Sprintf("%s%d", prefix, i),
			fmt.Sprintf("Dish %s %d", prefix, i),
			fmt.Sprintf("tag%d", i),
			1.0-float64(i)*0.01,
			minutes(20),
			"rice", "beans",
		)
	}
	return out
}

func scheduleJSON(ids ...string) string {
	var meals []string
	types := []string{"breakfast", "lunch", "dinner"}
	for i, id := range ids {
		meals = append(meals, fmt.Sprintf(
			`{"type":"%s","recipe_id":"%s","title":"x"}`, types[i%3], id))
	}
	return fmt.Sprintf(`{"days":[{"day":1,"meals":[%s]}]}`, strings.Join(meals, ","))
}

func newTestService(t *testing.T, corpus *testutils.MockCorpusService, memories *testutils.MockMemoryService, chat *testutils.MockChatService) *Service {
	log := zaptest.NewLogger(t)
	return NewService(
		corpus,
		memories,
		NewCompiler(chat, log),
		monitoring.NewMetrics(prometheus.NewRegistry()),
		log,
	)
}

func TestBuildPlanSufficientCorpus(t *testing.T) {
	corpus := new(testutils.MockCorpusService)
	memories := new(testutils.MockMemoryService)
	chat := new(testutils.MockChatService)

	corpus.On("Retrieve", mock.Anything, "u1", mock.Anything, 50).
		Return(poolCandidates("c", 20), nil).Once()
	memories.On("Retrieve", mock.Anything, "u1", mock.Anything, 6).
		Return([]string{"Prefers spicy food"}, nil)
	chat.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).
		Return(scheduleJSON("c0", "c1", "c2"), nil)

	svc := newTestService(t, corpus, memories, chat)
	mealPlan, err := svc.BuildPlan(context.Background(), "u1", plan.Preferences{Days: 5})

	require.NoError(t, err)
	require.NotNil(t, mealPlan)
	assert.Equal(t, []string{"c0", "c1", "c2"}, mealPlan.Audit.UsedRecipeIDs)
	assert.NotEmpty(t, mealPlan.PlanText)
	assert.NotEmpty(t, mealPlan.GroceryList)
	assert.Len(t, mealPlan.VendorPayload, len(mealPlan.GroceryList))
	assert.Equal(t, []string{"Prefers spicy food"}, mealPlan.Audit.MemoryUsed)

	// Sufficient corpus never generates.
	corpus.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildPlanBootstrapsOnceThenSucceeds(t *testing.T) {
	corpus := new(testutils.MockCorpusService)
	memories := new(testutils.MockMemoryService)
	chat := new(testutils.MockChatService)

	factory := testutils.NewCardFactory(1)
	generated := factory.Cards(60)

	corpus.On("Retrieve", mock.Anything, "u1", mock.Anything, 50).
		Return(poolCandidates("a", 5), nil).Once()
	corpus.On("Generate", mock.Anything, mock.Anything, 60).
		Return(generated, nil).Once()
	corpus.On("Persist", mock.Anything, "u1", mock.MatchedBy(func(cards []recipe.Card) bool {
		for _, c := range cards {
			if !strings.HasPrefix(c.ID, "r_u1_") {
				return false
			}
		}
		return len(cards) == 60
	})).Return(60, nil).Once()
	corpus.On("Retrieve", mock.Anything, "u1", mock.Anything, 50).
		Return(poolCandidates("b", 25), nil).Once()

	memories.On("Retrieve", mock.Anything, "u1", mock.Anything, 6).
		Return([]string(nil), nil)
	chat.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).
		Return(scheduleJSON("b0", "b1", "b2"), nil)

	svc := newTestService(t, corpus, memories, chat)
	mealPlan, err := svc.BuildPlan(context.Background(), "u1", plan.Preferences{Days: 5})

	require.NoError(t, err)
	assert.Equal(t, []string{"b0", "b1", "b2"}, mealPlan.Audit.UsedRecipeIDs)
	corpus.AssertExpectations(t)
}

func TestBuildPlanCorpusExhausted(t *testing.T) {
	corpus := new(testutils.MockCorpusService)
	memories := new(testutils.MockMemoryService)
	chat := new(testutils.MockChatService)

	factory := testutils.NewCardFactory(2)
	corpus.On("Retrieve", mock.Anything, "u1", mock.Anything, 50).
		Return(poolCandidates("a", 5), nil).Once()
	corpus.On("Generate", mock.Anything, mock.Anything, 60).
		Return(factory.Cards(60), nil).Once()
	corpus.On("Persist", mock.Anything, "u1", mock.Anything).
		Return(60, nil).Once()
	// Second retrieval still short: exactly one bootstrap cycle, then fail.
	corpus.On("Retrieve", mock.Anything, "u1", mock.Anything, 50).
		Return(poolCandidates("b", 10), nil).Once()

	memories.On("Retrieve", mock.Anything, "u1", mock.Anything, 6).
		Return([]string(nil), nil)

	svc := newTestService(t, corpus, memories, chat)
	mealPlan, err := svc.BuildPlan(context.Background(), "u1", plan.Preferences{Days: 5})

	require.Error(t, err)
	assert.Nil(t, mealPlan)
	assert.True(t, errors.Is(err, errors.CodeCorpusExhausted))

	appErr := err.(*errors.AppError)
	assert.Equal(t, 10, appErr.Metadata["retrieved"])
	assert.Equal(t, 15, appErr.Metadata["needed"])

	corpus.AssertExpectations(t)
	chat.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildPlanRetrieveErrorPropagates(t *testing.T) {
	corpus := new(testutils.MockCorpusService)
	memories := new(testutils.MockMemoryService)
	chat := new(testutils.MockChatService)

	corpus.On("Retrieve", mock.Anything, "u1", mock.Anything, 50).
		Return(nil, errors.NewEmbeddingError(fmt.Errorf("quota"))).Once()
	memories.On("Retrieve", mock.Anything, "u1", mock.Anything, 6).
		Return([]string(nil), nil)

	svc := newTestService(t, corpus, memories, chat)
	_, err := svc.BuildPlan(context.Background(), "u1", plan.Preferences{Days: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeEmbeddingFailed))
}

func TestBuildPlanGroundingViolationSurfaces(t *testing.T) {
	corpus := new(testutils.MockCorpusService)
	memories := new(testutils.MockMemoryService)
	chat := new(testutils.MockChatService)

	corpus.On("Retrieve", mock.Anything, "u1", mock.Anything, 50).
		Return(poolCandidates("c", 20), nil).Once()
	memories.On("Retrieve", mock.Anything, "u1", mock.Anything, 6).
		Return([]string(nil), nil)
	chat.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).
		Return(scheduleJSON("c0", "r_forged_1", "c2"), nil)

	svc := newTestService(t, corpus, memories, chat)
	mealPlan, err := svc.BuildPlan(context.Background(), "u1", plan.Preferences{Days: 5})

	require.Error(t, err)
	assert.Nil(t, mealPlan)
	assert.True(t, errors.Is(err, errors.CodeGroundingViolation))
	appErr := err.(*errors.AppError)
	assert.Equal(t, []string{"r_forged_1"}, appErr.Metadata["bad_recipe_ids"])
}
