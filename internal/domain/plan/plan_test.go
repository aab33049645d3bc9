package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoDaySchedule() Schedule {
	return Schedule{
		Days: []Day{
			{Day: 1, Meals: []Meal{
				{Type: Breakfast, RecipeID: "r1", Title: "Oatmeal"},
				{Type: Lunch, RecipeID: "r2", Title: "Tacos"},
				{Type: Dinner, RecipeID: "r1", Title: "Oatmeal"},
			}},
			{Day: 2, Meals: []Meal{
				{Type: Breakfast, RecipeID: "r3", Title: "Omelette"},
			}},
		},
	}
}

func TestUsedRecipeIDsDeduplicatesInOrder(t *testing.T) {
	ids := twoDaySchedule().UsedRecipeIDs()
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids)
}

func TestUsedRecipeIDsSkipsEmpty(t *testing.T) {
	s := Schedule{Days: []Day{{Day: 1, Meals: []Meal{{Type: Lunch}}}}}
	assert.Empty(t, s.UsedRecipeIDs())
}

func TestRenderText(t *testing.T) {
	text := twoDaySchedule().RenderText()
	assert.Equal(t,
		"Day 1:\nBreakfast: Oatmeal\nLunch: Tacos\nDinner: Oatmeal\n\nDay 2:\nBreakfast: Omelette",
		text)
}

func TestRenderTextEmpty(t *testing.T) {
	assert.Equal(t, "No plan generated.", Schedule{}.RenderText())
}
