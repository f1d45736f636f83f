package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bububa/purecheck/agents/rag"
	"github.com/bububa/purecheck/components/embedder/embeddertest"
	"github.com/bububa/purecheck/components/vectordb/engines/memory"
)

func newIndex(t *testing.T) (*rag.Index, *embeddertest.Embedder) {
	t.Helper()
	emb := embeddertest.New()
	idx, err := rag.NewIndex(rag.WithEmbedder(emb), rag.WithVectorDB(memory.New()))
	require.NoError(t, err)
	return idx, emb
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		fname := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(fname), 0o755))
		require.NoError(t, os.WriteFile(fname, []byte(content), 0o644))
	}
	return root
}

func TestRunLocal(t *testing.T) {
	ctx := context.Background()
	root := writeTree(t, map[string]string{
		"labelling.md":      "# Labelling\n\nTrans fat must be declared on every label.",
		"sodium/limits.txt": "Sodium above 600 mg per 100 g is high in salt.",
		"sugar.html":        "<html><body><h1>Sugars</h1><p>Sugars above 22.5 g per 100 g are high.</p></body></html>",
		"broken.pdf":        "not really a pdf",
		"empty.txt":         "   ",
		"notes.csv":         "ignored,by,extension",
		".cache/hidden.txt": "hidden directories are skipped",
	})
	idx, emb := newIndex(t)
	report, err := Run(ctx, Options{Sources: []string{root}, Index: idx})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Documents)
	assert.Equal(t, 3, report.Chunks)
	assert.Len(t, report.Skipped, 2)
	assert.Contains(t, report.Skipped, filepath.ToSlash(filepath.Join(root, "broken.pdf")))
	assert.Equal(t, "no text", report.Skipped[filepath.ToSlash(filepath.Join(root, "empty.txt"))])
	assert.Positive(t, report.Usage.InputTokens)
	assert.Equal(t, 3, emb.Calls)
	assert.True(t, idx.Ready(ctx))

	passages, err := idx.Retrieve(ctx, "how much sodium is high salt", 1)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, filepath.ToSlash(filepath.Join(root, "sodium", "limits.txt")), passages[0].Source)

	passages, err = idx.Retrieve(ctx, "sugars high", 1)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Contains(t, passages[0].Text, "Sugars above 22.5 g")
	assert.NotContains(t, passages[0].Text, "<p>")
}

func TestRunSingleFile(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "Energy is listed in kcal."})
	idx, _ := newIndex(t)
	report, err := Run(context.Background(), Options{Sources: []string{filepath.Join(root, "a.txt")}, Index: idx})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
}

func TestRunHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/guidelines":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, "<html><body><p>Fiber above 3 g per 100 g is a source of fiber.</p></body></html>")
		case "/notes":
			w.Header().Set("Content-Type", "text/plain")
			io.WriteString(w, "Protein claims need 10 percent of the reference intake.")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	idx, _ := newIndex(t)
	report, err := Run(context.Background(), Options{
		Sources:    []string{srv.URL + "/guidelines", srv.URL + "/notes", srv.URL + "/missing"},
		Index:      idx,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Contains(t, report.Skipped, srv.URL+"/missing")

	passages, err := idx.Retrieve(context.Background(), "source of fiber", 1)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, srv.URL+"/guidelines", passages[0].Source)
}

func TestRunSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Nutrient", "Reference intake"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Saturated fat", "20 g"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "intakes.xlsx"), buf.Bytes(), 0o644))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	idx, _ := newIndex(t)
	report, err := Run(context.Background(), Options{
		Sources:    []string{root, srv.URL + "/download?id=7"},
		Index:      idx,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Empty(t, report.Skipped)

	passages, err := idx.Retrieve(context.Background(), "saturated fat reference intake", 2)
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	assert.Contains(t, passages[0].Text, "| Saturated fat | 20 g |")
}

// fakeS3 serves a bucket listing plus HEAD and ranged GET of its objects
func fakeS3(t *testing.T, bucket string, objects map[string]string) *s3.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list-type") == "2" {
			prefix := r.URL.Query().Get("prefix")
			sb := new(strings.Builder)
			fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>%s</Name><Prefix>%s</Prefix><IsTruncated>false</IsTruncated>`, bucket, prefix)
			for key, body := range objects {
				if strings.HasPrefix(key, prefix) {
					fmt.Fprintf(sb, "<Contents><Key>%s</Key><Size>%d</Size></Contents>", key, len(body))
				}
			}
			sb.WriteString("</ListBucketResult>")
			w.Header().Set("Content-Type", "application/xml")
			io.WriteString(w, sb.String())
			return
		}
		body, ok := objects[strings.TrimPrefix(r.URL.Path, "/"+bucket+"/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			return
		}
		start, end := 0, len(body)-1
		if rng := r.Header.Get("Range"); rng != "" {
			fmt.Sscanf(strings.TrimPrefix(rng, "bytes="), "%d-%d", &start, &end)
			end = min(end, len(body)-1)
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(body)))
		w.Header().Set("Content-Length", strconv.Itoa(end-start+1))
		w.WriteHeader(http.StatusPartialContent)
		io.WriteString(w, body[start:end+1])
	}))
	t.Cleanup(srv.Close)
	return s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  aws.AnonymousCredentials{},
	})
}

func TestRunS3(t *testing.T) {
	clt := fakeS3(t, "guidelines", map[string]string{
		"fssai/sodium.txt": "Sodium above 600 mg per 100 g is high.",
		"fssai/sugar.md":   "Sugars above 22.5 g per 100 g are high.",
		"fssai/cover.png":  "binary",
		"other/unused.txt": "outside the prefix",
	})
	idx, _ := newIndex(t)
	report, err := Run(context.Background(), Options{Sources: []string{"s3://guidelines/fssai/"}, Index: idx, S3: clt})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Empty(t, report.Skipped)

	passages, err := idx.Retrieve(context.Background(), "sodium", 1)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "s3://guidelines/fssai/sodium.txt", passages[0].Source)
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	idx, emb := newIndex(t)

	_, err := Run(ctx, Options{Index: idx})
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = Run(ctx, Options{Sources: []string{"s3://guidelines"}, Index: idx})
	assert.ErrorIs(t, err, ErrNoS3Client)

	_, err = Run(ctx, Options{Sources: []string{filepath.Join(t.TempDir(), "missing")}, Index: idx})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Run(ctx, Options{Sources: []string{t.TempDir()}, Index: idx})
	assert.ErrorIs(t, err, ErrNoDocuments)

	root := writeTree(t, map[string]string{"a.txt": "Sodium limits."})
	emb.Err = assert.AnError
	_, err = Run(ctx, Options{Sources: []string{root}, Index: idx})
	assert.ErrorIs(t, err, assert.AnError)
}
