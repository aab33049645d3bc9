// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces the application uses to reach external services
package outbound

import (
	"context"
	"errors"
	"time"
)

// EmbeddingService converts text to fixed-length vectors. The result has
// the same length and order as the input.
type EmbeddingService interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatService is the generative text model. When jsonMode is set the
// provider is asked for a JSON object, but callers must still validate
// the returned text independently — the service does not guarantee it.
type ChatService interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error)
}

// Metadata carries vector payload fields. Values are limited to string,
// float64, and []string — the primitive types every index backend accepts.
type Metadata map[string]any

// VectorRecord is one (id, vector, metadata) triple for upsert.
type VectorRecord struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// VectorMatch is one similarity query hit.
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// VectorIndex stores vectors in named partitions and answers top-k
// similarity queries with equality filters. An unconfigured backend is a
// valid, explicitly disabled index: Available reports false and callers
// degrade to empty results instead of failing.
type VectorIndex interface {
	Available() bool
	Upsert(ctx context.Context, namespace string, records []VectorRecord) error
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]string) ([]VectorMatch, error)
}

// ErrKeyNotFound is returned by KeyValueStore.Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the simple persistence used for raw preference and
// location payloads. Not part of the grounding pipeline.
type KeyValueStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// WeatherService reports current conditions for a location.
type WeatherService interface {
	CurrentTempC(ctx context.Context, location string) (float64, error)
}

// String returns the string value for a metadata key, or "".
func (m Metadata) String(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// Float returns the numeric value for a metadata key, if present.
func (m Metadata) Float(key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Strings returns the string-list value for a metadata key, tolerating
// the []any shape JSON decoding produces.
func (m Metadata) Strings(key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
