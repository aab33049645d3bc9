// Package memindex provides an in-process vector index and a
// deterministic embedder. They back local development and tests where
// no hosted index or embedding model is reachable.
package memindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/platewise/v1/internal/ports/outbound"
)

type storedRecord struct {
	vector   []float32
	metadata outbound.Metadata
}

// Index is a mutex-guarded map of namespaces to records with brute-force
// cosine similarity search. Always available.
type Index struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]storedRecord
}

// NewIndex creates an empty in-process index.
func NewIndex() *Index {
	return &Index{namespaces: make(map[string]map[string]storedRecord)}
}

// Available always reports true.
func (ix *Index) Available() bool { return true }

// Upsert inserts or replaces records in the namespace.
func (ix *Index) Upsert(_ context.Context, namespace string, records []outbound.VectorRecord) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ns, ok := ix.namespaces[namespace]
	if !ok {
		ns = make(map[string]storedRecord)
		ix.namespaces[namespace] = ns
	}
	for _, r := range records {
		vec := make([]float32, len(r.Values))
		copy(vec, r.Values)
		ns[r.ID] = storedRecord{vector: vec, metadata: r.Metadata}
	}
	return nil
}

// Query returns the topK records by cosine similarity, restricted to
// records whose metadata matches every filter entry exactly.
func (ix *Index) Query(_ context.Context, namespace string, vector []float32, topK int, filter map[string]string) ([]outbound.VectorMatch, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ns := ix.namespaces[namespace]
	matches := make([]outbound.VectorMatch, 0, len(ns))
	for id, rec := range ns {
		if !matchesFilter(rec.metadata, filter) {
			continue
		}
		matches = append(matches, outbound.VectorMatch{
			ID:       id,
			Score:    cosine(vector, rec.vector),
			Metadata: rec.metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len reports the number of records in a namespace.
func (ix *Index) Len(namespace string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.namespaces[namespace])
}

func matchesFilter(md outbound.Metadata, filter map[string]string) bool {
	for k, want := range filter {
		if md.String(k) != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
