package memindex

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const embedDim = 64

// Embedder is a deterministic bag-of-words hash embedder. Similar texts
// share token buckets and score closer in cosine space, which is all
// local retrieval needs.
type Embedder struct{}

// NewEmbedder creates the deterministic embedder.
func NewEmbedder() *Embedder { return &Embedder{} }

// EmbedTexts hashes each text's tokens into a fixed-length normalized
// vector. The same text always yields the same vector.
func (e *Embedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = embed(text)
	}
	return vectors, nil
}

func embed(text string) []float32 {
	vec := make([]float32, embedDim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?()[]\"'")
		if tok == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := sum % embedDim
		sign := float32(1)
		if sum&(1<<31) != 0 {
			sign = -1
		}
		vec[bucket] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
