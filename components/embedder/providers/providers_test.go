package providers

import (
	"context"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/components/embedder"
)

func TestNew(t *testing.T) {
	ctx := context.Background()
	clt := goopenai.NewClient("test")
	e, closeFn, err := New(ctx, Config{OpenAI: clt}, embedder.WithModel("text-embedding-ada-002"), embedder.WithDimensions(256))
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	assert.Equal(t, embedder.ProviderOpenAI, e.Provider())
	assert.Equal(t, "text-embedding-ada-002", e.Model())
	assert.Equal(t, 256, e.(interface{ Dimensions() int }).Dimensions())

	e, _, err = New(ctx, Config{Provider: "azure", OpenAI: clt}, embedder.WithModel("ada"))
	require.NoError(t, err)
	assert.Equal(t, embedder.ProviderAzure, e.Provider())

	e, _, err = New(ctx, Config{Provider: "cohere", APIKey: "test"}, embedder.WithModel("embed-english-v3.0"))
	require.NoError(t, err)
	assert.Equal(t, embedder.ProviderCohere, e.Provider())
	assert.Equal(t, "embed-english-v3.0", e.Model())

	e, closeFn, err = New(ctx, Config{Provider: "Gemini", APIKey: "test"}, embedder.WithModel("text-embedding-004"))
	require.NoError(t, err)
	assert.Equal(t, embedder.ProviderGemini, e.Provider())
	assert.NoError(t, closeFn())

	_, _, err = New(ctx, Config{Provider: "voyage"})
	assert.Error(t, err)
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, provider := range []string{"cohere", "gemini"} {
		_, _, err := New(context.Background(), Config{Provider: provider})
		assert.ErrorIs(t, err, ErrNoAPIKey, provider)
	}
}
