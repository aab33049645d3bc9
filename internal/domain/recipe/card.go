// Package recipe contains the core domain model for recipe cards.
// Cards are immutable once stored; mutation happens only by full upsert.
package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Quantity is a tolerant JSON number. Model output routinely carries
// quantities as numbers, numeric strings, null, or free text ("a pinch");
// unmarshalling never fails, it just marks the value invalid.
type Quantity struct {
	Value float64
	Valid bool
}

// Qty builds a valid quantity. Convenience for literals in code and tests.
func Qty(v float64) Quantity {
	return Quantity{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	q.Value, q.Valid = 0, false

	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		q.Value, q.Valid = n, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			q.Value, q.Valid = n, true
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(q.Value)
}

// Ingredient is one line of a recipe card.
type Ingredient struct {
	Name string   `json:"name"`
	Qty  Quantity `json:"qty"`
	Unit string   `json:"unit,omitempty"`
}

// Card is a single recipe record as stored in the corpus.
type Card struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Tags        []string     `json:"tags,omitempty"`
	TimeMinutes *float64     `json:"time_minutes,omitempty"`
	Kcal        *float64     `json:"kcal,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
}

// Candidate is a card returned by similarity retrieval together with its
// index score (higher = more relevant). Reconstructed fresh per request,
// never persisted.
type Candidate struct {
	Card
	Score float64 `json:"score"`
}

// Storable reports whether the card carries enough content to be
// persisted. Cards without a title, ingredients, and steps are dropped.
func (c Card) Storable() bool {
	return c.Title != "" && len(c.Ingredients) > 0 && len(c.Steps) > 0
}

// IngredientNames returns the non-empty, trimmed ingredient names in order.
func (c Card) IngredientNames() []string {
	names := make([]string, 0, len(c.Ingredients))
	for _, ing := range c.Ingredients {
		if name := strings.TrimSpace(ing.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// PrimaryTag returns the first tag, the one the variety logic keys on.
func (c Card) PrimaryTag() string {
	if len(c.Tags) == 0 {
		return ""
	}
	return strings.ToLower(c.Tags[0])
}

// SearchText renders the card as the single string that gets embedded for
// similarity search.
func (c Card) SearchText() string {
	minutes := "?"
	if c.TimeMinutes != nil {
		minutes = strconv.FormatFloat(*c.TimeMinutes, 'f', -1, 64)
	}
	return fmt.Sprintf("%s. Tags: %s. Ingredients: %s. Time: %s minutes.",
		c.Title,
		strings.Join(c.Tags, ", "),
		strings.Join(c.IngredientNames(), ", "),
		minutes,
	)
}

var idSeq atomic.Uint64

// NewCardID returns a unique card ID derived from a monotonic clock token.
// The sequence suffix keeps IDs unique within a single millisecond.
func NewCardID(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixMilli(), idSeq.Add(1))
}
