package healthcheck

import (
	"context"
	"time"

	"github.com/platewise/v1/internal/ports/outbound"
)

// VectorIndexChecker reports the index capability. A disabled index is
// degraded, not unhealthy: the pipeline runs without retrieval.
func VectorIndexChecker(index outbound.VectorIndex) Checker {
	return CheckerFunc(func(ctx context.Context) Check {
		if !index.Available() {
			return Check{
				Status:  StatusDegraded,
				Message: "vector index not configured, retrieval disabled",
			}
		}
		return Check{Status: StatusHealthy}
	})
}

// KeyValueChecker probes the key-value store with a short write.
func KeyValueChecker(store outbound.KeyValueStore) Checker {
	return CheckerFunc(func(ctx context.Context) Check {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := store.Set(ctx, "healthcheck:probe", "ok", time.Minute); err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		return Check{Status: StatusHealthy}
	})
}
