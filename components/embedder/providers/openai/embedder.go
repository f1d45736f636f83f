package openai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/embedder"
)

// Embedder calls the embeddings endpoint of an OpenAI compatible client, Azure included
type Embedder struct {
	*openai.Client
	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client *openai.Client, opts ...embedder.Option) *Embedder {
	ret := &Embedder{Client: client}
	opts = append([]embedder.Option{embedder.WithProvider(embedder.ProviderOpenAI)}, opts...)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	list, err := p.BatchEmbed(ctx, []string{text}, usage)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return errors.New("empty embedding response")
	}
	*embedding = list[0]
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	if len(parts) == 0 {
		return nil, nil
	}
	req := openai.EmbeddingRequest{
		Input:      parts,
		Model:      openai.EmbeddingModel(p.Model()),
		Dimensions: p.Dimensions(),
	}
	resp, err := p.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	if usage != nil {
		usage.InputTokens += int64(resp.Usage.PromptTokens)
	}
	ret := make([]embedder.Embedding, 0, len(resp.Data))
	for _, v := range resp.Data {
		if v.Index < 0 || v.Index >= len(parts) {
			return nil, errors.New("embedding index out of range")
		}
		vector := make([]float64, len(v.Embedding))
		for i, f := range v.Embedding {
			vector[i] = float64(f)
		}
		ret = append(ret, embedder.Embedding{
			Object:    parts[v.Index],
			Embedding: vector,
			Index:     v.Index,
		})
	}
	return ret, nil
}
