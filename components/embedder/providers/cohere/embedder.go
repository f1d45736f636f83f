package cohere

import (
	"context"
	"errors"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/embedder"
)

// Embedder calls the Cohere embed endpoint. Documents are embedded as search documents and
// single texts, the retrieval queries, as search queries.
type Embedder struct {
	*cohereclient.Client
	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client *cohereclient.Client, opts ...embedder.Option) *Embedder {
	ret := &Embedder{Client: client}
	opts = append([]embedder.Option{embedder.WithProvider(embedder.ProviderCohere)}, opts...)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	list, err := p.embed(ctx, []string{text}, cohere.EmbedInputTypeSearchQuery, usage)
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
	return p.embed(ctx, parts, cohere.EmbedInputTypeSearchDocument, usage)
}

func (p *Embedder) embed(ctx context.Context, parts []string, inputType cohere.EmbedInputType, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	if len(parts) == 0 {
		return nil, nil
	}
	model := p.Model()
	req := cohere.EmbedRequest{
		Texts:     parts,
		Model:     &model,
		InputType: &inputType,
	}
	resp, err := p.Client.Embed(ctx, &req)
	if err != nil {
		return nil, err
	}
	floats := resp.GetEmbeddingsFloats()
	if floats == nil {
		return nil, errors.New("unexpected embedding response type")
	}
	if usage != nil && floats.Meta != nil && floats.Meta.BilledUnits != nil {
		if v := floats.Meta.BilledUnits.InputTokens; v != nil {
			usage.InputTokens += int64(*v)
		}
	}
	if len(floats.Embeddings) > len(parts) {
		return nil, errors.New("embedding index out of range")
	}
	ret := make([]embedder.Embedding, 0, len(floats.Embeddings))
	for idx, v := range floats.Embeddings {
		ret = append(ret, embedder.Embedding{
			Object:    parts[idx],
			Embedding: v,
			Index:     idx,
		})
	}
	return ret, nil
}
