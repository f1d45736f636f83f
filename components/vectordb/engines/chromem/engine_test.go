package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/components/embedder"
	"github.com/bububa/purecheck/components/vectordb"
)

func TestEnginePersistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e, err := Open(dir, vectordb.WithTopK(3))
	require.NoError(t, err)

	got, err := e.Search(ctx, []float64{1, 0}, vectordb.SearchWithCollection("guidelines"))
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, e.Insert(ctx, "guidelines",
		vectordb.Record{Embedding: embedder.Embedding{Object: "sugar limits", Embedding: []float64{1, 0}, Meta: map[string]string{"source": "a.pdf"}}},
		vectordb.Record{Embedding: embedder.Embedding{Object: "sodium limits", Embedding: []float64{0, 1}, Meta: map[string]string{"source": "a.pdf"}}},
	))

	// reopening reads the collection back from disk
	e, err = Open(dir, vectordb.WithTopK(3))
	require.NoError(t, err)
	count, err := e.Count(ctx, "guidelines")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err = e.Search(ctx, []float64{1, 0.1}, vectordb.SearchWithCollection("guidelines"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sugar limits", got[0].Embedding.Object)
	assert.Equal(t, "a.pdf", got[0].Embedding.Meta["source"])
	assert.NotEmpty(t, got[0].ID)
}
