package gemini

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/embedder"
)

// Embedder calls the Gemini embedding models. Documents use the retrieval document task
// and single texts the retrieval query task.
type Embedder struct {
	*genai.Client
	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client *genai.Client, opts ...embedder.Option) *Embedder {
	ret := &Embedder{Client: client}
	opts = append([]embedder.Option{embedder.WithProvider(embedder.ProviderGemini)}, opts...)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	model := p.EmbeddingModel(p.Model())
	model.TaskType = genai.TaskTypeRetrievalQuery
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return err
	}
	if resp.Embedding == nil {
		return errors.New("empty embedding response")
	}
	*embedding = embedder.Embedding{
		Object:    text,
		Embedding: float64s(resp.Embedding.Values),
	}
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	if len(parts) == 0 {
		return nil, nil
	}
	model := p.EmbeddingModel(p.Model())
	model.TaskType = genai.TaskTypeRetrievalDocument
	batch := model.NewBatch()
	for _, part := range parts {
		batch.AddContent(genai.Text(part))
	}
	resp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) > len(parts) {
		return nil, errors.New("embedding index out of range")
	}
	ret := make([]embedder.Embedding, 0, len(resp.Embeddings))
	for idx, v := range resp.Embeddings {
		ret = append(ret, embedder.Embedding{
			Object:    parts[idx],
			Embedding: float64s(v.Values),
			Index:     idx,
		})
	}
	return ret, nil
}

func float64s(v []float32) []float64 {
	ret := make([]float64, len(v))
	for i, f := range v {
		ret[i] = float64(f)
	}
	return ret
}
