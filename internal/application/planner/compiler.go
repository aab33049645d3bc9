package planner

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/platewise/v1/internal/domain/plan"
	"github.com/platewise/v1/internal/domain/recipe"
	"github.com/platewise/v1/internal/ports/outbound"
	"github.com/platewise/v1/pkg/errors"
	"go.uber.org/zap"
)

// Compiler asks the model to arrange retrieved recipes into a day/meal
// schedule, then mechanically validates the result. The model decides
// scheduling only; recipe existence and content always come from the
// retrieved set.
type Compiler struct {
	chat   outbound.ChatService
	logger *zap.Logger
}

// NewCompiler creates a plan compiler.
func NewCompiler(chat outbound.ChatService, logger *zap.Logger) *Compiler {
	return &Compiler{chat: chat, logger: logger.Named("compiler")}
}

// providedRecipe is the compact view of a candidate handed to the model.
type providedRecipe struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Kcal        *float64 `json:"kcal"`
	TimeMinutes *float64 `json:"time_minutes"`
	Tags        []string `json:"tags"`
}

// compilePrompt is the constrained scheduling instruction.
type compilePrompt struct {
	Task         string           `json:"task"`
	Days         int              `json:"days"`
	UserMemory   []string         `json:"user_memory"`
	Provided     []providedRecipe `json:"provided_recipes"`
	AllowedIDs   []string         `json:"allowed_recipe_ids"`
	Rules        []string         `json:"rules"`
	OutputSchema map[string]any   `json:"output_schema"`
}

// rawSchedule mirrors the model's response shape. Only scheduling fields
// are read; everything else on a meal is rehydrated from the card.
type rawSchedule struct {
	Days []struct {
		Day   int `json:"day"`
		Meals []struct {
			Type     string `json:"type"`
			RecipeID string `json:"recipe_id"`
			Title    string `json:"title"`
		} `json:"meals"`
	} `json:"days"`
	Audit struct {
		UsedRecipeIDs []string `json:"used_recipe_ids"`
	} `json:"audit"`
}

const compilerSystemPrompt = "You are a grounded meal planner. Use only allowed_recipe_ids."

// Compile builds a schedule spanning days days from the candidate list.
// The candidates are the allowed set: any referenced recipe ID outside it
// rejects the whole plan with a GroundingViolation naming the offenders —
// no silent per-meal repair. Memory facts bias scheduling but are not
// enforced mechanically.
func (c *Compiler) Compile(
	ctx context.Context,
	candidates []recipe.Candidate,
	memoryFacts []string,
	days int,
) (*plan.Schedule, error) {
	provided := make([]providedRecipe, len(candidates))
	allowedIDs := make([]string, len(candidates))
	byID := make(map[string]recipe.Card, len(candidates))
	for i, cand := range candidates {
		provided[i] = providedRecipe{
			ID:          cand.ID,
			Title:       cand.Title,
			Kcal:        cand.Kcal,
			TimeMinutes: cand.TimeMinutes,
			Tags:        cand.Tags,
		}
		allowedIDs[i] = cand.ID
		byID[cand.ID] = cand.Card
	}

	prompt := compilePrompt{
		Task:       "Create a meal plan grounded ONLY in provided_recipes.",
		Days:       days,
		UserMemory: memoryFacts,
		Provided:   provided,
		AllowedIDs: allowedIDs,
		Rules: []string{
			"Use exactly 3 meals per day: breakfast, lunch, dinner.",
			"Every meal MUST use recipe_id from allowed_recipe_ids.",
			"Do NOT invent new recipes or recipe_ids.",
			"Try to respect user_memory (avoid dislikes; prefer constraints).",
			"Return valid JSON only.",
		},
		OutputSchema: map[string]any{
			"days": []map[string]any{{
				"day": 1,
				"meals": []map[string]string{{
					"type":      "breakfast|lunch|dinner",
					"recipe_id": "string",
					"title":     "string",
				}},
			}},
			"audit": map[string]any{"used_recipe_ids": []string{"string"}},
		},
	}

	promptJSON, err := json.Marshal(prompt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode compile prompt")
	}

	content, err := c.chat.Complete(ctx, compilerSystemPrompt, string(promptJSON), true)
	if err != nil {
		return nil, errors.Wrap(err, "plan compilation call failed")
	}

	var raw rawSchedule
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, errors.NewGenerationError("plan response is not valid JSON", err)
	}

	// Grounding check. Used IDs are always derived by scanning the
	// meals; the model's own audit field is advisory only.
	usedSet := make(map[string]bool)
	for _, d := range raw.Days {
		for _, m := range d.Meals {
			if m.RecipeID != "" {
				usedSet[m.RecipeID] = true
			}
		}
	}

	var bad []string
	for id := range usedSet {
		if _, allowed := byID[id]; !allowed {
			bad = append(bad, id)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		c.logger.Error("Grounding violation in compiled plan",
			zap.Strings("bad_recipe_ids", bad),
			zap.Int("retrieved_count", len(allowedIDs)),
		)
		return nil, errors.NewGroundingViolationError(bad, len(allowedIDs))
	}

	used := make([]string, 0, len(usedSet))
	for id := range usedSet {
		used = append(used, id)
	}
	sort.Strings(used)

	schedule := &plan.Schedule{
		Days: make([]plan.Day, len(raw.Days)),
		Audit: plan.Audit{
			UsedRecipeIDs:      used,
			RetrievedRecipeIDs: allowedIDs,
			MemoryUsed:         memoryFacts,
		},
	}
	for i, d := range raw.Days {
		day := plan.Day{Day: d.Day, Meals: make([]plan.Meal, len(d.Meals))}
		for j, m := range d.Meals {
			card := byID[m.RecipeID]
			day.Meals[j] = plan.Meal{
				Type:        plan.MealType(m.Type),
				RecipeID:    card.ID,
				Title:       card.Title,
				Kcal:        card.Kcal,
				TimeMinutes: card.TimeMinutes,
				Steps:       card.Steps,
				Ingredients: card.Ingredients,
			}
		}
		schedule.Days[i] = day
	}

	return schedule, nil
}
