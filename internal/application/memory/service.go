// Package memory provides the application layer for user memory facts:
// similarity-ranked storage and retrieval of short preference and
// feedback statements.
package memory

import (
	"context"

	"github.com/platewise/v1/internal/domain/memory"
	"github.com/platewise/v1/internal/ports/outbound"
	"github.com/platewise/v1/pkg/errors"
	"go.uber.org/zap"
)

// Namespace is the vector index partition holding memory facts,
// isolated from recipe vectors.
const Namespace = "user_memory"

const maxFactTextLen = 5000

// Service stores and retrieves user memory facts.
type Service struct {
	embedder outbound.EmbeddingService
	index    outbound.VectorIndex
	logger   *zap.Logger
}

// NewService creates a memory service.
func NewService(embedder outbound.EmbeddingService, index outbound.VectorIndex, logger *zap.Logger) *Service {
	return &Service{
		embedder: embedder,
		index:    index,
		logger:   logger.Named("memory"),
	}
}

// Store appends a fact for the user. Facts are never edited; newer facts
// win at query time through similarity ranking. Returns the fact ID, or
// "" without error when the index is not configured.
func (s *Service) Store(ctx context.Context, userID, text string, ftype memory.FactType) (string, error) {
	if !s.index.Available() {
		s.logger.Debug("Vector index not configured, memory not stored",
			zap.String("user_id", userID))
		return "", nil
	}

	fact := memory.NewFact(userID, text, ftype)

	vectors, err := s.embedder.EmbedTexts(ctx, []string{fact.Text})
	if err != nil || len(vectors) == 0 {
		return "", errors.NewEmbeddingError(err)
	}

	record := outbound.VectorRecord{
		ID:     fact.ID,
		Values: vectors[0],
		Metadata: outbound.Metadata{
			"user_id": fact.UserID,
			"type":    string(fact.Type),
			"text":    truncate(fact.Text, maxFactTextLen),
			"ts":      float64(fact.Timestamp),
		},
	}
	if err := s.index.Upsert(ctx, Namespace, []outbound.VectorRecord{record}); err != nil {
		return "", errors.NewExternalServiceError("vector index", err)
	}

	s.logger.Debug("Stored memory fact",
		zap.String("user_id", userID),
		zap.String("fact_id", fact.ID),
		zap.String("type", string(fact.Type)),
	)
	return fact.ID, nil
}

// Retrieve returns the texts of the top-k facts most similar to the
// query, filtered to the user. Degrades to empty when the index is
// unavailable or the embedding fails; memory is always advisory.
func (s *Service) Retrieve(ctx context.Context, userID, query string, topK int) ([]string, error) {
	if !s.index.Available() {
		return nil, nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		s.logger.Warn("Memory query embedding failed, degrading to empty",
			zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}

	matches, err := s.index.Query(ctx, Namespace, vectors[0], topK,
		map[string]string{"user_id": userID})
	if err != nil {
		s.logger.Warn("Memory query failed, degrading to empty",
			zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if text := m.Metadata.String("text"); text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
