// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the application services consumed by the HTTP layer
package inbound

import (
	"context"

	"github.com/platewise/v1/internal/domain/memory"
	"github.com/platewise/v1/internal/domain/plan"
	"github.com/platewise/v1/internal/domain/recipe"
)

// PlannerService builds grounded meal plans.
type PlannerService interface {
	BuildPlan(ctx context.Context, userID string, prefs plan.Preferences) (*plan.MealPlan, error)
}

// CorpusService manages the recipe corpus.
type CorpusService interface {
	Generate(ctx context.Context, prefs plan.Preferences, count int) ([]recipe.Card, error)
	Persist(ctx context.Context, userID string, cards []recipe.Card) (int, error)
	Retrieve(ctx context.Context, userID string, prefs plan.Preferences, topK int) ([]recipe.Candidate, error)
}

// MemoryService stores and retrieves user memory facts.
type MemoryService interface {
	Store(ctx context.Context, userID, text string, ftype memory.FactType) (string, error)
	Retrieve(ctx context.Context, userID, query string, topK int) ([]string, error)
}
