package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/embedder"
)

func TestBatchEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input      []string `json:"input"`
			Model      string   `json:"model"`
			Dimensions int      `json:"dimensions"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "text-embedding-ada-002", req.Model)
		assert.Equal(t, 512, req.Dimensions)
		resp := openai.EmbeddingResponse{Usage: openai.Usage{PromptTokens: 7}}
		// answered out of order, the index keeps the pairing
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, openai.Embedding{Index: i, Embedding: []float32{float32(i), 1}})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test")
	cfg.BaseURL = srv.URL + "/v1"
	e := New(openai.NewClientWithConfig(cfg), embedder.WithModel("text-embedding-ada-002"), embedder.WithDimensions(512))

	usage := new(components.LLMUsage)
	list, err := e.BatchEmbed(context.Background(), []string{"sodium", "sugar"}, usage)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, v := range list {
		assert.Equal(t, []float64{float64(v.Index), 1}, v.Embedding)
	}
	assert.Equal(t, int64(7), usage.InputTokens)

	one := new(embedder.Embedding)
	require.NoError(t, e.Embed(context.Background(), "fiber", one, nil))
	assert.Equal(t, "fiber", one.Object)
}
