package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "limits.md")
	require.NoError(t, os.WriteFile(fname, []byte("# Sodium\nAt most 2000 mg per day."), 0o644))

	src, err := NewFile(fname)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, "limits.md", src.Name())
	assert.Equal(t, "md", Ext(src.Name()))
	assert.Equal(t, "limits.md", src.Meta()["filename"])
	assert.Equal(t, strconv.FormatInt(src.Size(), 10), src.Meta()["size"])

	doc, err := Load(context.Background(), src, new(TextParser))
	require.NoError(t, err)
	assert.Equal(t, "# Sodium\nAt most 2000 mg per day.", doc.String())
	assert.Equal(t, map[string]string{MetaSource: filepath.ToSlash(fname)}, doc.Meta())

	_, err = NewFile(dir)
	assert.Error(t, err)
}

func TestHttpReadAll(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path == "/missing.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Sugars: 50 g per day."))
	}))
	defer srv.Close()

	src, err := NewHttp(WithHttpURL(srv.URL + "/guides/sugar.txt?v=2"))
	require.NoError(t, err)
	assert.Equal(t, "sugar.txt", src.Name())
	assert.Equal(t, "txt", Ext(src.Name()))

	doc, err := Load(context.Background(), src, new(TextParser))
	require.NoError(t, err)
	assert.Equal(t, "Sugars: 50 g per day.", doc.String())
	assert.Equal(t, "text/plain", src.ContentType())
	assert.Equal(t, ReadCompleted, src.ReadStatus())

	// a completed download is not fetched again
	require.NoError(t, src.ReadAll(context.Background()))
	assert.Equal(t, 1, hits)

	missing, err := NewHttp(WithHttpURL(srv.URL + "/missing.txt"))
	require.NoError(t, err)
	assert.Error(t, missing.ReadAll(context.Background()))
	assert.Equal(t, Unread, missing.ReadStatus())
}

func TestExt(t *testing.T) {
	assert.Equal(t, "pdf", Ext("FSSAI.PDF"))
	assert.Equal(t, "html", Ext("https://example.com/a/page.html#top"))
	assert.Equal(t, "", Ext("README"))
}
