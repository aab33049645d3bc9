package memindex

import (
	"context"
	"testing"

	"github.com/platewise/v1/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexQueryRanksBySimilarity(t *testing.T) {
	ix := NewIndex()
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, "recipes", []outbound.VectorRecord{
		{ID: "close", Values: []float32{1, 0.1, 0}, Metadata: outbound.Metadata{"user_id": "u1"}},
		{ID: "far", Values: []float32{0, 1, 0}, Metadata: outbound.Metadata{"user_id": "u1"}},
		{ID: "exact", Values: []float32{1, 0, 0}, Metadata: outbound.Metadata{"user_id": "u1"}},
	}))

	matches, err := ix.Query(ctx, "recipes", []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].ID)
	assert.Equal(t, "close", matches[1].ID)
}

func TestIndexFilter(t *testing.T) {
	ix := NewIndex()
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, "recipes", []outbound.VectorRecord{
		{ID: "mine", Values: []float32{1, 0}, Metadata: outbound.Metadata{"user_id": "u1"}},
		{ID: "theirs", Values: []float32{1, 0}, Metadata: outbound.Metadata{"user_id": "u2"}},
	}))

	matches, err := ix.Query(ctx, "recipes", []float32{1, 0}, 10,
		map[string]string{"user_id": "u1"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "mine", matches[0].ID)
}

func TestIndexNamespacesIsolated(t *testing.T) {
	ix := NewIndex()
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, "recipes", []outbound.VectorRecord{
		{ID: "r1", Values: []float32{1, 0}},
	}))

	matches, err := ix.Query(ctx, "user_memory", []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 1, ix.Len("recipes"))
	assert.Equal(t, 0, ix.Len("user_memory"))
}

func TestIndexUpsertReplaces(t *testing.T) {
	ix := NewIndex()
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, "recipes", []outbound.VectorRecord{
		{ID: "r1", Values: []float32{1, 0}, Metadata: outbound.Metadata{"title": "old"}},
	}))
	require.NoError(t, ix.Upsert(ctx, "recipes", []outbound.VectorRecord{
		{ID: "r1", Values: []float32{1, 0}, Metadata: outbound.Metadata{"title": "new"}},
	}))

	matches, err := ix.Query(ctx, "recipes", []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Metadata.String("title"))
}

func TestEmbedderDeterministic(t *testing.T) {
	e := NewEmbedder()
	ctx := context.Background()

	first, err := e.EmbedTexts(ctx, []string{"chicken rice bowl"})
	require.NoError(t, err)
	second, err := e.EmbedTexts(ctx, []string{"chicken rice bowl"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEmbedderSimilarTextsScoreCloser(t *testing.T) {
	e := NewEmbedder()
	ctx := context.Background()

	vecs, err := e.EmbedTexts(ctx, []string{
		"chicken rice bowl",
		"chicken rice plate",
		"chocolate layer cake",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	similar := cosine(vecs[0], vecs[1])
	distant := cosine(vecs[0], vecs[2])
	assert.Greater(t, similar, distant)
}
