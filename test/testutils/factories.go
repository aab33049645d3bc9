// Package testutils provides test data factories and mock collaborators.
package testutils

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/platewise/v1/internal/domain/recipe"
)

// CardFactory produces deterministic recipe cards for tests.
type CardFactory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewCardFactory creates a card factory with a seeded faker.
func NewCardFactory(seed int64) *CardFactory {
	return &CardFactory{faker: gofakeit.New(seed)}
}

// Card builds one card with a sequential ID and plausible fields.
func (f *CardFactory) Card() recipe.Card {
	f.seq++
	t := float64(f.faker.Number(10, 45))
	k := float64(f.faker.Number(250, 800))
	return recipe.Card{
		ID:          fmt.Sprintf("r_test_%d", f.seq),
		Title:       fmt.Sprintf("%s %s", f.faker.Adjective(), f.faker.Dinner()),
		Tags:        []string{f.faker.RandomString([]string{"italian", "mexican", "thai", "indian", "greek"})},
		TimeMinutes: &t,
		Kcal:        &k,
		Ingredients: f.Ingredients(4),
		Steps: []string{
			"Prep the ingredients.",
			"Cook everything together.",
			"Season and serve.",
		},
	}
}

// Cards builds n cards.
func (f *CardFactory) Cards(n int) []recipe.Card {
	cards := make([]recipe.Card, n)
	for i := range cards {
		cards[i] = f.Card()
	}
	return cards
}

// Candidates builds n candidates with descending similarity scores.
func (f *CardFactory) Candidates(n int) []recipe.Candidate {
	out := make([]recipe.Candidate, n)
	for i := range out {
		out[i] = recipe.Candidate{
			Card:  f.Card(),
			Score: 1.0 - float64(i)*0.01,
		}
	}
	return out
}

// Ingredients builds n ingredients with valid quantities.
func (f *CardFactory) Ingredients(n int) []recipe.Ingredient {
	out := make([]recipe.Ingredient, n)
	for i := range out {
		out[i] = recipe.Ingredient{
			Name: f.faker.Vegetable(),
			Qty:  recipe.Qty(float64(f.faker.Number(1, 4))),
			Unit: f.faker.RandomString([]string{"grams", "tbsp", "count", "ml"}),
		}
	}
	return out
}
