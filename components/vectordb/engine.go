// Package vectordb stores embedded text and answers similarity queries.
package vectordb

import (
	"context"

	"github.com/bububa/purecheck/components/embedder"
)

type EngineType string

const (
	Memory  EngineType = "memory"
	Chromem EngineType = "chromem"
	Milvus  EngineType = "milvus"
)

// Engine is a vector store. Search scores are similarities: higher is closer.
type Engine interface {
	Insert(ctx context.Context, collection string, records ...Record) error
	Search(ctx context.Context, vectors []float64, opts ...SearchOption) ([]Record, error)
	Count(ctx context.Context, collection string) (int, error)
}

// Record is a stored embedding. Score is only set on search results.
type Record struct {
	ID        string
	Score     float64
	Embedding embedder.Embedding
}

// Float32s narrows v for engines that store float32 vectors
func Float32s(v []float64) []float32 {
	ret := make([]float32, len(v))
	for i, f := range v {
		ret[i] = float32(f)
	}
	return ret
}

// Float64s widens v
func Float64s(v []float32) []float64 {
	ret := make([]float64, len(v))
	for i, f := range v {
		ret[i] = float64(f)
	}
	return ret
}
