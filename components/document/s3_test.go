package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves a single object with HEAD and ranged GET
func fakeS3(t *testing.T, key string, body string) *s3.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/guidelines/"+key {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Last-Modified", time.Unix(1700000000, 0).UTC().Format(http.TimeFormat))
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

func TestS3Load(t *testing.T) {
	ctx := context.Background()
	body := "Foods high in sodium carry a front of pack warning."
	clt := fakeS3(t, "fssai/sodium.txt", body)
	src, err := NewS3(ctx, WithS3Client(clt), WithS3Bucket("guidelines"), WithS3Key("fssai/sodium.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), src.Size())
	assert.Equal(t, "sodium.txt", src.Name())

	doc, err := Load(ctx, src, new(TextParser))
	require.NoError(t, err)
	assert.Equal(t, body, doc.String())
	assert.Equal(t, "s3://guidelines/fssai/sodium.txt", doc.Meta()[MetaSource])

	p := make([]byte, 8)
	n, err := src.ReadAt(p, int64(len(body)-4))
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "ing.", string(p[:n]))
}
