package planner

import (
	"fmt"
	"testing"

	"github.com/platewise/v1/internal/domain/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(id, title, tag string, score float64, timeMinutes *float64, ingredients ...string) recipe.Candidate {
	ings := make([]recipe.Ingredient, len(ingredients))
	for i, name := range ingredients {
		ings[i] = recipe.Ingredient{Name: name, Qty: recipe.Qty(1), Unit: "count"}
	}
	var tags []string
	if tag != "" {
		tags = []string{tag}
	}
	return recipe.Candidate{
		Card: recipe.Card{
			ID:          id,
			Title:       title,
			Tags:        tags,
			TimeMinutes: timeMinutes,
			Ingredients: ings,
			Steps:       []string{"Cook."},
		},
		Score: score,
	}
}

func minutes(m float64) *float64 { return &m }

func TestSelectExcludedNeverChosen(t *testing.T) {
	candidates := []recipe.Candidate{
		cand("r1", "Mushroom Risotto", "italian", 0.9, minutes(25), "mushrooms", "rice"),
		cand("r2", "Bean Tacos", "mexican", 0.8, minutes(20), "beans", "tortillas"),
	}

	// Even with target larger than the pool, the excluded card stays out.
	for _, target := range []int{1, 2, 10} {
		selected := Select(candidates, target, nil, []string{"mushroom"})
		require.Len(t, selected, 1, "target %d", target)
		assert.Equal(t, "r2", selected[0].ID)
	}
}

func TestSelectExclusionIsCaseInsensitiveSubstring(t *testing.T) {
	candidates := []recipe.Candidate{
		cand("r1", "Ham Sandwich", "deli", 0.9, minutes(10), "Hamburger Buns"),
	}
	assert.Empty(t, Select(candidates, 1, nil, []string{"ham"}))
}

func TestSelectPantryOverlapBoosts(t *testing.T) {
	candidates := []recipe.Candidate{
		cand("r1", "Plain Pasta", "italian", 0.5, minutes(20), "pasta", "olive oil"),
		cand("r2", "Egg Fried Rice", "chinese", 0.5, minutes(20), "rice", "eggs"),
	}

	selected := Select(candidates, 2, []string{"rice", "eggs"}, nil)
	require.Len(t, selected, 2)
	assert.Equal(t, "r2", selected[0].ID)
}

func TestSelectTimePenalty(t *testing.T) {
	candidates := []recipe.Candidate{
		cand("r1", "Slow Stew", "stew", 0.5, minutes(85), "beef"),
		cand("r2", "Quick Salad", "salad", 0.4, minutes(10), "lettuce"),
	}

	// 0.5 - 0.02*(85-25) = -0.7 < 0.4, the slow recipe drops below.
	selected := Select(candidates, 2, nil, nil)
	require.Len(t, selected, 2)
	assert.Equal(t, "r2", selected[0].ID)
}

func TestSelectMissingTimeDefaultsTo30(t *testing.T) {
	candidates := []recipe.Candidate{
		cand("r1", "No Time Listed", "a", 0.5, nil, "x"),
		cand("r2", "At Floor", "b", 0.5, minutes(25), "y"),
	}

	// Missing time costs 0.02*(30-25) = 0.1, so r2 ranks first.
	selected := Select(candidates, 2, nil, nil)
	require.Len(t, selected, 2)
	assert.Equal(t, "r2", selected[0].ID)
}

func TestSelectTitleDedup(t *testing.T) {
	candidates := []recipe.Candidate{
		cand("r1", "Lentil Soup", "soup", 0.9, minutes(20), "lentils"),
		cand("r2", "lentil soup", "soup", 0.8, minutes(20), "lentils"),
		cand("r3", "Greek Salad", "greek", 0.7, minutes(10), "feta"),
	}

	selected := Select(candidates, 2, nil, nil)
	require.Len(t, selected, 2)
	assert.Equal(t, "r1", selected[0].ID)
	assert.Equal(t, "r3", selected[1].ID)
}

func TestSelectVarietyThenBackfill(t *testing.T) {
	// Ten italian candidates, target 4: variety skips tag repeats until
	// ceil(0.7*4) slots are taken, then availability wins and repeats
	// backfill the rest.
	var candidates []recipe.Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates,
			cand(fmt.Sprintf("r%d", i), fmt.Sprintf("Pasta %d", i), "italian", 1.0-float64(i)*0.01, minutes(20), "pasta"))
	}

	selected := Select(candidates, 4, nil, nil)
	require.Len(t, selected, 4)
	assert.Equal(t, "r0", selected[0].ID)
}

func TestSelectDeterministic(t *testing.T) {
	candidates := []recipe.Candidate{
		cand("r1", "A", "x", 0.5, minutes(20), "a"),
		cand("r2", "B", "y", 0.5, minutes(20), "b"),
		cand("r3", "C", "z", 0.5, minutes(20), "c"),
	}

	first := Select(candidates, 3, nil, nil)
	second := Select(candidates, 3, nil, nil)
	assert.Equal(t, first, second)
	// Equal scores keep input order.
	assert.Equal(t, "r1", first[0].ID)
	assert.Equal(t, "r2", first[1].ID)
	assert.Equal(t, "r3", first[2].ID)
}

func TestSelectEmptyInputs(t *testing.T) {
	assert.Nil(t, Select(nil, 5, nil, nil))
	assert.Nil(t, Select([]recipe.Candidate{cand("r1", "A", "", 1, nil, "a")}, 0, nil, nil))
}
