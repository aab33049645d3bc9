// Package monitoring handles Prometheus metrics for the planning pipeline
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters and histograms for the grounded planning
// pipeline.
type Metrics struct {
	PlansCompiled       prometheus.Counter
	PlanFailures        *prometheus.CounterVec
	GroundingViolations prometheus.Counter
	BootstrapRounds     prometheus.Counter
	CandidatesRetrieved prometheus.Histogram
	RecipesGenerated    prometheus.Counter
	MemoryFactsStored   prometheus.Counter
}

// NewMetrics registers pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := func(opts prometheus.CounterOpts) prometheus.Counter {
		c := prometheus.NewCounter(opts)
		reg.MustRegister(c)
		return c
	}

	m := &Metrics{
		PlansCompiled: factory(prometheus.CounterOpts{
			Name: "plans_compiled_total",
			Help: "Total number of successfully compiled meal plans",
		}),
		GroundingViolations: factory(prometheus.CounterOpts{
			Name: "grounding_violations_total",
			Help: "Total number of plans rejected for referencing unretrieved recipe IDs",
		}),
		BootstrapRounds: factory(prometheus.CounterOpts{
			Name: "corpus_bootstrap_rounds_total",
			Help: "Total number of corpus bootstrap cycles triggered",
		}),
		RecipesGenerated: factory(prometheus.CounterOpts{
			Name: "recipes_generated_total",
			Help: "Total number of recipe cards generated",
		}),
		MemoryFactsStored: factory(prometheus.CounterOpts{
			Name: "memory_facts_stored_total",
			Help: "Total number of user memory facts stored",
		}),
	}

	m.PlanFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_failures_total",
			Help: "Total number of failed plan requests by error code",
		},
		[]string{"code"},
	)
	reg.MustRegister(m.PlanFailures)

	m.CandidatesRetrieved = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plan_candidates_retrieved",
			Help:    "Number of candidate recipes retrieved per plan request",
			Buckets: prometheus.LinearBuckets(0, 10, 6),
		},
	)
	reg.MustRegister(m.CandidatesRetrieved)

	return m
}
