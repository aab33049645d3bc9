// Package corpus provides the application layer for recipe corpus
// management: model-backed generation, vector persistence, and
// similarity retrieval of candidate recipes.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/platewise/v1/internal/domain/plan"
	"github.com/platewise/v1/internal/domain/recipe"
	"github.com/platewise/v1/internal/ports/outbound"
	"github.com/platewise/v1/pkg/errors"
	"go.uber.org/zap"
)

// RecipesNamespace is the vector index partition holding recipe cards.
const RecipesNamespace = "recipes"

// Metadata payload bounds, sized to index limits.
const (
	maxTitleLen           = 500
	maxTags               = 20
	maxIngredientNames    = 80
	maxEncodedFieldLen    = 15000
	maxStepsTextLen       = 5000
	generationMaxTime     = 35
	generationMinSteps    = 3
	generationMaxSteps    = 7
	generationMinIngreds  = 6
	generationMaxIngreds  = 12
)

// Service manages the recipe corpus.
type Service struct {
	chat     outbound.ChatService
	embedder outbound.EmbeddingService
	index    outbound.VectorIndex
	logger   *zap.Logger
}

// NewService creates a corpus service.
func NewService(
	chat outbound.ChatService,
	embedder outbound.EmbeddingService,
	index outbound.VectorIndex,
	logger *zap.Logger,
) *Service {
	return &Service{
		chat:     chat,
		embedder: embedder,
		index:    index,
		logger:   logger.Named("corpus"),
	}
}

// generationPrompt is the structured instruction sent to the model.
type generationPrompt struct {
	Task        string         `json:"task"`
	Count       int            `json:"count"`
	Constraints map[string]any `json:"constraints"`
	Required    map[string]any `json:"required_fields_per_recipe"`
	Rules       []string       `json:"rules"`
}

// Generate produces count recipe cards via a constrained model call.
// Entries that cannot be decoded are dropped rather than failing the
// batch; entries without an ID receive a clock-derived one.
func (s *Service) Generate(ctx context.Context, prefs plan.Preferences, count int) ([]recipe.Card, error) {
	cuisines := prefs.Cuisines
	if len(cuisines) == 0 {
		cuisines = []string{"any"}
	}
	diet := prefs.Diet
	if diet == "" {
		diet = "any"
	}

	prompt := generationPrompt{
		Task:  "Generate recipe cards for a recipe corpus.",
		Count: count,
		Constraints: map[string]any{
			"diet":              diet,
			"cuisines":          cuisines,
			"pantry_bias":       prefs.PantryItems,
			"exclude":           prefs.Exclusions,
			"time_minutes_max":  generationMaxTime,
			"steps_range":       []int{generationMinSteps, generationMaxSteps},
			"ingredients_range": []int{generationMinIngreds, generationMaxIngreds},
		},
		Required: map[string]any{
			"id":           "string",
			"title":        "string",
			"tags":         []string{"string"},
			"time_minutes": "number",
			"kcal":         "number",
			"ingredients":  []map[string]string{{"name": "string", "qty": "number|null", "unit": "string|null"}},
			"steps":        []string{"string"},
		},
		Rules: []string{
			"Return ONLY valid JSON.",
			"Return an OBJECT with a single key 'recipes' whose value is an array of recipe objects.",
			"Each recipe id must be unique.",
			"Avoid excluded ingredients strictly.",
			"Prefer overlap across recipes so grocery lists reuse items.",
			"Keep ingredient names simple (no 'chopped', 'minced', etc.).",
		},
	}

	promptJSON, err := json.Marshal(prompt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode generation prompt")
	}

	content, err := s.chat.Complete(ctx,
		"You generate clean JSON for a recipe corpus.",
		string(promptJSON),
		true,
	)
	if err != nil {
		return nil, errors.Wrap(err, "recipe generation call failed")
	}

	cards, err := decodeCards(content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Generated recipe cards",
		zap.Int("requested", count),
		zap.Int("decoded", len(cards)),
	)
	return cards, nil
}

// decodeCards parses a model response into recipe cards. The response
// may be an object wrapping a "recipes" array, a bare array, or either
// of those double-encoded as a JSON string; individual entries may also
// be JSON-encoded strings.
func decodeCards(content string) ([]recipe.Card, error) {
	var root any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &root); err != nil {
		return nil, errors.NewGenerationError("response is not valid JSON", err)
	}

	node := root
	if obj, ok := node.(map[string]any); ok {
		if wrapped, exists := obj["recipes"]; exists {
			node = wrapped
		}
	}
	if encoded, ok := node.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
			return nil, errors.NewGenerationError("recipes field is a non-JSON string", err)
		}
		node = decoded
	}

	list, ok := node.([]any)
	if !ok {
		return nil, errors.NewGenerationError(
			fmt.Sprintf("expected a list of recipes, got %T", node), nil)
	}

	cards := make([]recipe.Card, 0, len(list))
	for _, entry := range list {
		var raw []byte
		switch e := entry.(type) {
		case string:
			raw = []byte(e)
		case map[string]any:
			raw, _ = json.Marshal(e)
		default:
			continue
		}

		var card recipe.Card
		if err := json.Unmarshal(raw, &card); err != nil {
			continue
		}
		if card.ID == "" {
			card.ID = recipe.NewCardID("r")
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Persist embeds and upserts cards into the recipes partition. Cards
// without a title, ingredients, and steps are skipped. An unavailable
// index is not an error: zero candidates stored, callers carry on.
func (s *Service) Persist(ctx context.Context, userID string, cards []recipe.Card) (int, error) {
	if !s.index.Available() {
		s.logger.Warn("Vector index not configured, recipes not persisted",
			zap.String("user_id", userID))
		return 0, nil
	}

	storable := make([]recipe.Card, 0, len(cards))
	for _, card := range cards {
		if card.Storable() {
			storable = append(storable, card)
		}
	}
	if len(storable) == 0 {
		return 0, nil
	}

	texts := make([]string, len(storable))
	for i, card := range storable {
		texts[i] = card.SearchText()
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, errors.NewEmbeddingError(err)
	}

	records := make([]outbound.VectorRecord, len(storable))
	for i, card := range storable {
		records[i] = outbound.VectorRecord{
			ID:       card.ID,
			Values:   vectors[i],
			Metadata: cardMetadata(userID, card),
		}
	}

	if err := s.index.Upsert(ctx, RecipesNamespace, records); err != nil {
		return 0, errors.NewExternalServiceError("vector index", err)
	}

	s.logger.Info("Persisted recipe cards",
		zap.String("user_id", userID),
		zap.Int("stored", len(records)),
	)
	return len(records), nil
}

// cardMetadata flattens a card into bounded index metadata. Full-fidelity
// ingredients and steps travel as JSON strings since metadata values are
// limited to primitives and string lists.
func cardMetadata(userID string, card recipe.Card) outbound.Metadata {
	names := card.IngredientNames()
	if len(names) > maxIngredientNames {
		names = names[:maxIngredientNames]
	}
	tags := card.Tags
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	ingredientsJSON, _ := json.Marshal(card.Ingredients)
	stepsJSON, _ := json.Marshal(card.Steps)

	meta := outbound.Metadata{
		"user_id":          userID,
		"title":            truncate(card.Title, maxTitleLen),
		"tags":             tags,
		"ingredient_names": names,
		"steps_text":       truncate(strings.Join(card.Steps, " | "), maxStepsTextLen),
		"ingredients_json": truncate(string(ingredientsJSON), maxEncodedFieldLen),
		"steps_json":       truncate(string(stepsJSON), maxEncodedFieldLen),
	}
	if card.TimeMinutes != nil {
		meta["time_minutes"] = *card.TimeMinutes
	}
	if card.Kcal != nil {
		meta["kcal"] = *card.Kcal
	}
	return meta
}

// Retrieve embeds a query summarizing the request and returns the top-k
// similar cards for the user. Degrades to an empty slice when the index
// is unavailable or the embedding call fails; retrieval is advisory.
func (s *Service) Retrieve(ctx context.Context, userID string, prefs plan.Preferences, topK int) ([]recipe.Candidate, error) {
	if !s.index.Available() {
		s.logger.Debug("Vector index not configured, retrieval skipped",
			zap.String("user_id", userID))
		return nil, nil
	}

	query := buildQuery(prefs)
	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		s.logger.Warn("Query embedding failed, degrading to empty candidate list",
			zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}

	matches, err := s.index.Query(ctx, RecipesNamespace, vectors[0], topK,
		map[string]string{"user_id": userID})
	if err != nil {
		s.logger.Warn("Vector query failed, degrading to empty candidate list",
			zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}

	candidates := make([]recipe.Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, matchToCandidate(m))
	}
	return candidates, nil
}

// buildQuery renders the request as the single natural-language string
// that gets embedded for retrieval.
func buildQuery(prefs plan.Preferences) string {
	diet := prefs.Diet
	if diet == "" {
		diet = "any"
	}
	return fmt.Sprintf(
		"Recipes for diet=%s, cuisines=%s. Pantry: %s. Exclude: %s. Practical meals for %d days.",
		diet,
		joinOr(prefs.Cuisines, "any"),
		joinOr(prefs.PantryItems, "none"),
		joinOr(prefs.Exclusions, "none"),
		prefs.Days,
	)
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

// matchToCandidate rebuilds a card from index metadata, decoding the
// JSON-encoded full-fidelity fields. Decode failures leave the field
// empty rather than dropping the match.
func matchToCandidate(m outbound.VectorMatch) recipe.Candidate {
	card := recipe.Card{
		ID:    m.ID,
		Title: m.Metadata.String("title"),
		Tags:  m.Metadata.Strings("tags"),
	}
	if v, ok := m.Metadata.Float("time_minutes"); ok {
		card.TimeMinutes = &v
	}
	if v, ok := m.Metadata.Float("kcal"); ok {
		card.Kcal = &v
	}
	if raw := m.Metadata.String("ingredients_json"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &card.Ingredients)
	}
	if raw := m.Metadata.String("steps_json"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &card.Steps)
	}
	return recipe.Candidate{Card: card, Score: m.Score}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
