// Package embedder turns text into vectors and splits documents into embeddable chunks.
package embedder

import (
	"context"
	"errors"
	"math"

	"github.com/bububa/purecheck/components"
)

type Embedder interface {
	Provider() Provider
	Model() string
	Embed(context.Context, string, *Embedding, *components.LLMUsage) error
	BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]Embedding, error)
}

// ErrVectorLengthMismatch is returned when two vectors of different dimension are compared
var ErrVectorLengthMismatch = errors.New("vector length mismatch")

// EmbedChunks generates embeddings for chunks in batches of batchSize, 0 means a single batch.
func EmbedChunks(ctx context.Context, embedder Embedder, chunks []Chunk, batchSize int, usage *components.LLMUsage) ([]EmbeddedChunk, error) {
	if batchSize <= 0 {
		batchSize = len(chunks)
	}
	embeddedChunks := make([]EmbeddedChunk, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		parts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			parts = append(parts, chunk.Text)
		}
		batchUsage := new(components.LLMUsage)
		ret, err := embedder.BatchEmbed(ctx, parts, batchUsage)
		if usage != nil {
			usage.Merge(batchUsage)
		}
		if err != nil {
			return embeddedChunks, err
		}
		for _, v := range ret {
			if v.Index < 0 || v.Index >= len(parts) {
				return embeddedChunks, errors.New("embedding index out of range")
			}
			chunk := chunks[start+v.Index]
			v.Index += start
			embeddedChunks = append(embeddedChunks, EmbeddedChunk{
				Embedding: v,
				Chunk:     &chunk,
			})
		}
	}
	return embeddedChunks, nil
}

// DotProduct calculates the dot product of the embedding vector with another
// embedding vector. Both vectors must have the same length.
func (e *Embedding) DotProduct(other *Embedding) (float64, error) {
	if len(e.Embedding) != len(other.Embedding) {
		return 0, ErrVectorLengthMismatch
	}
	var dotProduct float64
	for i := range e.Embedding {
		dotProduct += e.Embedding[i] * other.Embedding[i]
	}
	return dotProduct, nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either is the zero vector
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrVectorLengthMismatch
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
