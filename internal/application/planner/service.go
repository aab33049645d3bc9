// Package planner provides the grounded meal-planning pipeline:
// candidate selection, schedule compilation with mechanical grounding
// validation, and the orchestrating bootstrap control loop.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/platewise/v1/internal/domain/grocery"
	"github.com/platewise/v1/internal/domain/memory"
	"github.com/platewise/v1/internal/domain/plan"
	"github.com/platewise/v1/internal/domain/recipe"
	"github.com/platewise/v1/internal/infrastructure/monitoring"
	"github.com/platewise/v1/internal/ports/inbound"
	"github.com/platewise/v1/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Pipeline constants.
const (
	retrieveTopK   = 50
	bootstrapBatch = 60
	memoryTopK     = 6

	minNeededFloor = 12
	minNeededCeil  = 30

	memoryQuery = "Food preferences, dislikes, time constraints, favorite cuisines, and feedback"
)

// Service orchestrates the grounded planning pipeline per request:
// memory side effects, retrieval, one bootstrap cycle when the corpus is
// sparse, selection, compilation, and deterministic grocery aggregation.
type Service struct {
	corpus   inbound.CorpusService
	memories inbound.MemoryService
	compiler *Compiler
	metrics  *monitoring.Metrics
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewService creates the planning orchestrator.
func NewService(
	corpusSvc inbound.CorpusService,
	memorySvc inbound.MemoryService,
	compiler *Compiler,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		corpus:   corpusSvc,
		memories: memorySvc,
		compiler: compiler,
		metrics:  metrics,
		tracer:   otel.Tracer("platewise/planner"),
		logger:   logger.Named("planner"),
	}
}

// MinNeeded is the sufficiency threshold: the candidate count required
// before compiling a plan spanning days days of 3 meals.
func MinNeeded(days int) int {
	n := days * 3
	if n < minNeededFloor {
		return minNeededFloor
	}
	if n > minNeededCeil {
		return minNeededCeil
	}
	return n
}

// BuildPlan runs the full pipeline for one request. Requests are
// independent and stateless; all state lives in the external index.
func (s *Service) BuildPlan(ctx context.Context, userID string, prefs plan.Preferences) (*plan.MealPlan, error) {
	ctx, span := s.tracer.Start(ctx, "BuildPlan")
	defer span.End()

	start := time.Now()
	log := s.logger.With(zap.String("user_id", userID), zap.Int("days", prefs.Days))

	// Opportunistic memory writes. Fire-and-forget: the request never
	// fails because a preference fact could not be recorded.
	s.recordPreferenceFacts(ctx, userID, prefs)

	// Memory retrieval is independent of candidate retrieval; overlap
	// them to cut latency.
	memCh := make(chan []string, 1)
	go func() {
		facts, err := s.memories.Retrieve(ctx, userID, memoryQuery, memoryTopK)
		if err != nil {
			log.Warn("Memory retrieval failed, planning without memory", zap.Error(err))
		}
		memCh <- facts
	}()

	candidates, err := s.corpus.Retrieve(ctx, userID, prefs, retrieveTopK)
	if err != nil {
		return nil, err
	}

	needed := MinNeeded(prefs.Days)
	if len(candidates) < needed {
		candidates, err = s.bootstrap(ctx, userID, prefs, len(candidates))
		if err != nil {
			s.countFailure(err)
			return nil, err
		}
		if len(candidates) < needed {
			s.countFailure(errors.NewCorpusExhaustedError(len(candidates), needed))
			return nil, errors.NewCorpusExhaustedError(len(candidates), needed)
		}
	}
	s.metrics.CandidatesRetrieved.Observe(float64(len(candidates)))

	selected := Select(candidates, needed, prefs.PantryItems, prefs.Exclusions)
	memoryFacts := <-memCh

	schedule, err := s.compiler.Compile(ctx, selected, memoryFacts, prefs.Days)
	if err != nil {
		if errors.Is(err, errors.CodeGroundingViolation) {
			s.metrics.GroundingViolations.Inc()
		}
		s.countFailure(err)
		return nil, err
	}

	byID := make(map[string]recipe.Card, len(selected))
	for _, c := range selected {
		byID[c.ID] = c.Card
	}
	items := grocery.Aggregate(schedule.Audit.UsedRecipeIDs, byID)

	s.metrics.PlansCompiled.Inc()
	log.Info("Compiled grounded meal plan",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selected)),
		zap.Int("recipes_used", len(schedule.Audit.UsedRecipeIDs)),
		zap.Int("grocery_items", len(items)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &plan.MealPlan{
		Schedule:      *schedule,
		PlanText:      schedule.RenderText(),
		GroceryList:   items,
		VendorPayload: grocery.VendorPayload(items),
	}, nil
}

// bootstrap generates a fresh batch of recipes, persists them, and
// retries retrieval exactly once. Persistence runs on a detached context:
// an aborted caller does not roll back the write-through, the generated
// corpus keeps its value for future requests.
func (s *Service) bootstrap(ctx context.Context, userID string, prefs plan.Preferences, have int) ([]recipe.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "bootstrap")
	defer span.End()

	s.metrics.BootstrapRounds.Inc()
	s.logger.Info("Corpus too sparse, bootstrapping",
		zap.String("user_id", userID),
		zap.Int("retrieved", have),
		zap.Int("needed", MinNeeded(prefs.Days)),
	)

	cards, err := s.corpus.Generate(ctx, prefs, bootstrapBatch)
	if err != nil {
		return nil, err
	}
	s.metrics.RecipesGenerated.Add(float64(len(cards)))

	// Fresh per-user IDs for the whole batch.
	ts := time.Now().UnixMilli()
	for i := range cards {
		cards[i].ID = fmt.Sprintf("r_%s_%d_%d", userID, ts, i)
	}

	stored, err := s.corpus.Persist(context.WithoutCancel(ctx), userID, cards)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Bootstrap batch persisted",
		zap.String("user_id", userID),
		zap.Int("generated", len(cards)),
		zap.Int("stored", stored),
	)

	return s.corpus.Retrieve(ctx, userID, prefs, retrieveTopK)
}

// recordPreferenceFacts derives memory facts from the request and writes
// them in the background. Failures are logged and swallowed.
func (s *Service) recordPreferenceFacts(ctx context.Context, userID string, prefs plan.Preferences) {
	var facts []string
	if prefs.Diet != "" {
		facts = append(facts, "Diet preference: "+prefs.Diet)
	}
	if len(prefs.Cuisines) > 0 {
		facts = append(facts, "Preferred cuisines: "+strings.Join(prefs.Cuisines, ", "))
	}
	if len(prefs.Exclusions) > 0 {
		facts = append(facts, "Avoid ingredients: "+strings.Join(prefs.Exclusions, ", "))
	}
	if len(facts) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		for _, text := range facts {
			if _, err := s.memories.Store(detached, userID, text, memory.TypePreference); err != nil {
				s.logger.Warn("Preference fact write failed",
					zap.String("user_id", userID), zap.Error(err))
				continue
			}
			s.metrics.MemoryFactsStored.Inc()
		}
	}()
}

func (s *Service) countFailure(err error) {
	s.metrics.PlanFailures.WithLabelValues(string(errors.GetCode(err))).Inc()
}
