package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/components/embedder"
)

func TestNew(t *testing.T) {
	e := New(nil, embedder.WithModel("text-embedding-004"))
	assert.Equal(t, embedder.ProviderGemini, e.Provider())
	assert.Equal(t, "text-embedding-004", e.Model())

	// an empty batch never reaches the client
	list, err := e.BatchEmbed(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFloat64s(t *testing.T) {
	assert.Equal(t, []float64{0.5, -1, 0}, float64s([]float32{0.5, -1, 0}))
	assert.Empty(t, float64s(nil))
}
