package plan

import (
	"fmt"
	"strings"

	"github.com/platewise/v1/internal/domain/grocery"
	"github.com/platewise/v1/internal/domain/recipe"
)

// MealType is one of the three daily meal slots.
type MealType string

// Meal slots. Every compiled day carries exactly these three.
const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// Meal is a single scheduled meal. Recipe content is always sourced from
// the retrieved card identified by RecipeID, never from model text.
type Meal struct {
	Type        MealType            `json:"type"`
	RecipeID    string              `json:"recipe_id"`
	Title       string              `json:"title"`
	Kcal        *float64            `json:"kcal,omitempty"`
	TimeMinutes *float64            `json:"time_minutes,omitempty"`
	Steps       []string            `json:"steps,omitempty"`
	Ingredients []recipe.Ingredient `json:"ingredients,omitempty"`
}

// Day is one scheduled day.
type Day struct {
	Day   int    `json:"day"`
	Meals []Meal `json:"meals"`
}

// Audit records how the plan was grounded, for traceability and testing.
type Audit struct {
	UsedRecipeIDs      []string `json:"used_recipe_ids"`
	RetrievedRecipeIDs []string `json:"retrieved_recipe_ids"`
	MemoryUsed         []string `json:"memory_used,omitempty"`
}

// Schedule is the validated day/meal arrangement produced by the compiler.
type Schedule struct {
	Days  []Day `json:"days"`
	Audit Audit `json:"audit"`
}

// UsedRecipeIDs derives the set of referenced recipe IDs by scanning
// every meal. This is the canonical derivation; any audit field the model
// emitted is advisory only.
func (s Schedule) UsedRecipeIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range s.Days {
		for _, m := range d.Meals {
			if m.RecipeID != "" && !seen[m.RecipeID] {
				seen[m.RecipeID] = true
				ids = append(ids, m.RecipeID)
			}
		}
	}
	return ids
}

// RenderText renders the schedule as plain text for display.
func (s Schedule) RenderText() string {
	if len(s.Days) == 0 {
		return "No plan generated."
	}
	var b strings.Builder
	for i, d := range s.Days {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Day %d:", d.Day)
		for _, m := range d.Meals {
			fmt.Fprintf(&b, "\n%s: %s", titleCase(string(m.Type)), m.Title)
		}
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// MealPlan is the complete per-request response: the validated schedule
// plus its deterministic derivations. Never persisted.
type MealPlan struct {
	Schedule
	PlanText      string               `json:"meal_plan_text"`
	GroceryList   []grocery.Item       `json:"grocery_list"`
	VendorPayload []grocery.VendorItem `json:"vendor_payload"`
}
