package planner

import (
	"context"
	"testing"

	"github.com/platewise/v1/internal/domain/recipe"
	"github.com/platewise/v1/pkg/errors"
	"github.com/platewise/v1/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func compilerCandidates() []recipe.Candidate {
	return []recipe.Candidate{
		cand("r1", "Oatmeal", "breakfast", 0.9, minutes(10), "oats", "milk"),
		cand("r2", "Bean Tacos", "mexican", 0.8, minutes(20), "beans", "tortillas"),
		cand("r3", "Lentil Soup", "soup", 0.7, minutes(30), "lentils"),
	}
}

func TestCompileForeignIDRejected(t *testing.T) {
	chat := new(testutils.MockChatService)
	chat.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).Return(
		`{"days":[{"day":1,"meals":[
			{"type":"breakfast","recipe_id":"r1","title":"Oatmeal"},
			{"type":"lunch","recipe_id":"r_fake_1","title":"Invented Dish"},
			{"type":"dinner","recipe_id":"r_fake_2","title":"Another"}
		]}],"audit":{"used_recipe_ids":["r1"]}}`, nil)

	c := NewCompiler(chat, zaptest.NewLogger(t))
	schedule, err := c.Compile(context.Background(), compilerCandidates(), nil, 1)

	require.Error(t, err)
	assert.Nil(t, schedule)
	assert.True(t, errors.Is(err, errors.CodeGroundingViolation))

	appErr := err.(*errors.AppError)
	assert.Equal(t, []string{"r_fake_1", "r_fake_2"}, appErr.Metadata["bad_recipe_ids"])
	assert.Equal(t, 3, appErr.Metadata["retrieved_count"])
}

func TestCompileModelAuditIsAdvisory(t *testing.T) {
	// The model's audit lists only allowed IDs, but a meal references a
	// foreign one. The scan of the meals must win.
	chat := new(testutils.MockChatService)
	chat.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).Return(
		`{"days":[{"day":1,"meals":[
			{"type":"breakfast","recipe_id":"r_fake","title":"Phantom"}
		]}],"audit":{"used_recipe_ids":["r1"]}}`, nil)

	c := NewCompiler(chat, zaptest.NewLogger(t))
	_, err := c.Compile(context.Background(), compilerCandidates(), nil, 1)
	require.True(t, errors.Is(err, errors.CodeGroundingViolation))
}

func TestCompileRehydratesFromCards(t *testing.T) {
	// The model lies about the title; compiled meals must carry the
	// card's content, not the model's.
	chat := new(testutils.MockChatService)
	chat.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).Return(
		`{"days":[{"day":1,"meals":[
			{"type":"breakfast","recipe_id":"r1","title":"Totally Different Name"},
			{"type":"lunch","recipe_id":"r2","title":"Bean Tacos"},
			{"type":"dinner","recipe_id":"r3","title":"Lentil Soup"}
		]}]}`, nil)

	c := NewCompiler(chat, zaptest.NewLogger(t))
	schedule, err := c.Compile(context.Background(), compilerCandidates(), []string{"User likes oats"}, 1)
	require.NoError(t, err)

	require.Len(t, schedule.Days, 1)
	require.Len(t, schedule.Days[0].Meals, 3)
	breakfast := schedule.Days[0].Meals[0]
	assert.Equal(t, "Oatmeal", breakfast.Title)
	assert.Equal(t, "r1", breakfast.RecipeID)
	assert.NotEmpty(t, breakfast.Steps)
	assert.NotEmpty(t, breakfast.Ingredients)

	assert.Equal(t, []string{"r1", "r2", "r3"}, schedule.Audit.UsedRecipeIDs)
	assert.Equal(t, []string{"r1", "r2", "r3"}, schedule.Audit.RetrievedRecipeIDs)
	assert.Equal(t, []string{"User likes oats"}, schedule.Audit.MemoryUsed)
}

func TestCompileInvalidJSON(t *testing.T) {
	chat := new(testutils.MockChatService)
	chat.On("Complete", mock.Anything, mock.Anything, mock.Anything, true).Return(
		"Sorry, I cannot produce a plan right now.", nil)

	c := NewCompiler(chat, zaptest.NewLogger(t))
	_, err := c.Compile(context.Background(), compilerCandidates(), nil, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeGenerationFailed))
}
