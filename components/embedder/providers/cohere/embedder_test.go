package cohere

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/embedder"
)

func TestBatchEmbed(t *testing.T) {
	var inputTypes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Texts     []string `json:"texts"`
			Model     string   `json:"model"`
			InputType string   `json:"input_type"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, strings.HasSuffix(r.URL.Path, "/embed"), r.URL.Path)
		assert.Equal(t, "Bearer test", r.Header.Get("Authorization"))
		assert.Equal(t, "embed-english-v3.0", req.Model)
		inputTypes = append(inputTypes, req.InputType)
		vectors := make([][]float64, len(req.Texts))
		for i := range req.Texts {
			vectors[i] = []float64{float64(i), 1}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"response_type": "embeddings_floats",
			"id":            "emb-1",
			"texts":         req.Texts,
			"embeddings":    vectors,
			"meta":          map[string]any{"billed_units": map[string]any{"input_tokens": 5}},
		})
	}))
	defer srv.Close()

	clt := cohereclient.NewClient(option.WithToken("test"), option.WithBaseURL(srv.URL))
	e := New(clt, embedder.WithModel("embed-english-v3.0"))
	assert.Equal(t, embedder.ProviderCohere, e.Provider())

	usage := new(components.LLMUsage)
	list, err := e.BatchEmbed(context.Background(), []string{"sodium", "sugar"}, usage)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sugar", list[1].Object)
	assert.Equal(t, []float64{1, 1}, list[1].Embedding)
	assert.Equal(t, int64(5), usage.InputTokens)

	one := new(embedder.Embedding)
	require.NoError(t, e.Embed(context.Background(), "fiber", one, nil))
	assert.Equal(t, "fiber", one.Object)
	assert.Equal(t, []string{"search_document", "search_query"}, inputTypes)

	list, err = e.BatchEmbed(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}
