package testutils

import (
	"context"

	"github.com/platewise/v1/internal/domain/memory"
	"github.com/platewise/v1/internal/domain/plan"
	"github.com/platewise/v1/internal/domain/recipe"
	"github.com/platewise/v1/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockChatService mocks the generative model.
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt, jsonMode)
	return args.String(0), args.Error(1)
}

// MockEmbeddingService mocks the embedder.
type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if v := args.Get(0); v != nil {
		return v.([][]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

// ConstEmbedder returns the same unit vector for every text. Handy when
// a test only needs embedding to succeed.
type ConstEmbedder struct{}

func (ConstEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

// MockVectorIndex mocks the vector index.
type MockVectorIndex struct {
	mock.Mock
	Unavailable bool
}

func (m *MockVectorIndex) Available() bool { return !m.Unavailable }

func (m *MockVectorIndex) Upsert(ctx context.Context, namespace string, records []outbound.VectorRecord) error {
	args := m.Called(ctx, namespace, records)
	return args.Error(0)
}

func (m *MockVectorIndex) Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]string) ([]outbound.VectorMatch, error) {
	args := m.Called(ctx, namespace, vector, topK, filter)
	if v := args.Get(0); v != nil {
		return v.([]outbound.VectorMatch), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCorpusService mocks the corpus application service.
type MockCorpusService struct {
	mock.Mock
}

func (m *MockCorpusService) Generate(ctx context.Context, prefs plan.Preferences, count int) ([]recipe.Card, error) {
	args := m.Called(ctx, prefs, count)
	if v := args.Get(0); v != nil {
		return v.([]recipe.Card), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCorpusService) Persist(ctx context.Context, userID string, cards []recipe.Card) (int, error) {
	args := m.Called(ctx, userID, cards)
	return args.Int(0), args.Error(1)
}

func (m *MockCorpusService) Retrieve(ctx context.Context, userID string, prefs plan.Preferences, topK int) ([]recipe.Candidate, error) {
	args := m.Called(ctx, userID, prefs, topK)
	if v := args.Get(0); v != nil {
		return v.([]recipe.Candidate), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMemoryService mocks the memory application service.
type MockMemoryService struct {
	mock.Mock
}

func (m *MockMemoryService) Store(ctx context.Context, userID, text string, ftype memory.FactType) (string, error) {
	args := m.Called(ctx, userID, text, ftype)
	return args.String(0), args.Error(1)
}

func (m *MockMemoryService) Retrieve(ctx context.Context, userID, query string, topK int) ([]string, error) {
	args := m.Called(ctx, userID, query, topK)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}
