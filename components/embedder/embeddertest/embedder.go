// Package embeddertest provides a deterministic bag-of-words Embedder for tests
package embeddertest

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/embedder"
)

// Embedder hashes lowercased words into Dims buckets. Texts sharing words are similar.
type Embedder struct {
	Dims int
	// Err is returned by every call when set
	Err error
	// Calls counts BatchEmbed calls
	Calls int
}

var _ embedder.Embedder = (*Embedder)(nil)

func New() *Embedder {
	return &Embedder{Dims: 64}
}

func (e *Embedder) Provider() embedder.Provider {
	return "test"
}

func (e *Embedder) Model() string {
	return "bag-of-words"
}

func (e *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	list, err := e.BatchEmbed(ctx, []string{text}, usage)
	if err != nil {
		return err
	}
	*embedding = list[0]
	return nil
}

func (e *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	e.Calls++
	if e.Err != nil {
		return nil, e.Err
	}
	ret := make([]embedder.Embedding, 0, len(parts))
	for i, part := range parts {
		vec := make([]float64, e.Dims)
		words := strings.FieldsFunc(strings.ToLower(part), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		for _, w := range words {
			h := fnv.New32a()
			h.Write([]byte(w))
			vec[int(h.Sum32())%e.Dims]++
		}
		if usage != nil {
			usage.InputTokens += int64(len(words))
		}
		ret = append(ret, embedder.Embedding{Object: part, Embedding: vec, Index: i})
	}
	return ret, nil
}
