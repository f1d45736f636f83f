// Package providers builds an embedder by provider name
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
	"github.com/google/generative-ai-go/genai"
	goopenai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/bububa/purecheck/components/embedder"
	"github.com/bububa/purecheck/components/embedder/providers/cohere"
	"github.com/bububa/purecheck/components/embedder/providers/gemini"
	"github.com/bububa/purecheck/components/embedder/providers/openai"
)

// ErrNoAPIKey is returned for cohere and gemini without an api key
var ErrNoAPIKey = errors.New("embedding provider requires an api key")

// Config selects the embedding service. OpenAI and Azure reuse the chat client, which must
// have been configured for azure when Provider is azure.
type Config struct {
	Provider embedder.Provider
	// APIKey authenticates cohere and gemini
	APIKey string
	// BaseURL overrides the cohere endpoint
	BaseURL string
	OpenAI  *goopenai.Client
}

// New returns the embedder of cfg.Provider, an empty provider means openai. The returned
// close func releases the provider client and is never nil.
func New(ctx context.Context, cfg Config, opts ...embedder.Option) (embedder.Embedder, func() error, error) {
	noop := func() error { return nil }
	switch provider := cfg.Provider; {
	case strings.EqualFold(provider, embedder.ProviderOpenAI), provider == "":
		return openai.New(cfg.OpenAI, opts...), noop, nil
	case strings.EqualFold(provider, embedder.ProviderAzure):
		return openai.New(cfg.OpenAI, append([]embedder.Option{embedder.WithProvider(embedder.ProviderAzure)}, opts...)...), noop, nil
	case strings.EqualFold(provider, embedder.ProviderCohere):
		if cfg.APIKey == "" {
			return nil, nil, ErrNoAPIKey
		}
		clientOpts := []cohereoption.RequestOption{cohereoption.WithToken(cfg.APIKey)}
		if cfg.BaseURL != "" {
			clientOpts = append(clientOpts, cohereoption.WithBaseURL(cfg.BaseURL))
		}
		return cohere.New(cohereclient.NewClient(clientOpts...), opts...), noop, nil
	case strings.EqualFold(provider, embedder.ProviderGemini):
		if cfg.APIKey == "" {
			return nil, nil, ErrNoAPIKey
		}
		clt, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		return gemini.New(clt, opts...), clt.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
}
