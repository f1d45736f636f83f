package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/errdefs"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"label.jpg", true},
		{"label.JPG", true},
		{"label.webp", true},
		{"my.label.jpeg", true},
		{"label.exe.jpg", true},
		{"label.exe", false},
		{"label", false},
		{"label.", false},
		{".png", true},
		{"label.jpg.exe", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AllowedFile(tt.filename, DefaultAllowed), tt.filename)
	}
	assert.True(t, AllowedFile("label.PNG", []string{"PNG"}))
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	img, err := v.Validate("label.png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIME)

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"no filename", " ", pngHeader},
		{"bad extension", "label.exe", pngHeader},
		{"empty body", "label.png", nil},
		{"not an image", "label.png", []byte("%PDF-1.4 this is a pdf")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.filename, tt.data)
			assert.ErrorIs(t, err, errdefs.ErrValidation)
		})
	}

	v.MaxBytes = 8
	_, err = v.Validate("label.png", pngHeader)
	assert.ErrorIs(t, err, errdefs.ErrValidation)

	v = &Validator{Allowed: DefaultAllowed}
	_, err = v.Validate("label.png", []byte("plain text"))
	assert.NoError(t, err, "sniffing off")
}

func TestValidatorSingleExtension(t *testing.T) {
	v := NewValidator()
	_, err := v.Validate("label.exe.png", pngHeader)
	require.NoError(t, err, "only the last suffix counts by default")

	v.SingleExtension = true
	for _, name := range []string{"label.exe.png", "my.label.png", "label..png"} {
		_, err = v.Validate(name, pngHeader)
		assert.ErrorIs(t, err, errdefs.ErrValidation, name)
	}
	_, err = v.Validate("label.png", pngHeader)
	assert.NoError(t, err)
}

func TestSecureFilename(t *testing.T) {
	tests := map[string]string{
		"label.jpg":              "label.jpg",
		"My Label (1).jpg":       "My_Label_1.jpg",
		"../../etc/passwd":       "etc_passwd",
		`C:\photos\label.png`:    "C_photos_label.png",
		"étiquette.png":          "etiquette.png",
		"...":                    "",
		"  spaced   name .webp ": "spaced_name_.webp",
	}
	for in, want := range tests {
		assert.Equal(t, want, SecureFilename(in), in)
	}
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "20240305_140709_label.jpg", StoredName("label.jpg", now))
	assert.Equal(t, "20240305_140709_upload", StoredName("///", now))
}

func TestLocalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStore(dir)
	require.NoError(t, err)
	loc, err := s.Save(context.Background(), "20240305_140709_label.png", "image/png", pngHeader)
	require.NoError(t, err)
	bs, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, bs)

	_, err = s.Save(context.Background(), "../escape.png", "image/png", pngHeader)
	assert.Error(t, err)
}

func TestS3Store(t *testing.T) {
	var (
		gotPath        string
		gotContentType string
		gotBody        []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"etag"`)
	}))
	defer srv.Close()
	clt := s3.New(s3.Options{
		Region:                     "us-east-1",
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		Credentials:                aws.AnonymousCredentials{},
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})

	s := NewS3Store(clt, "labels", WithS3Prefix("/uploads/"))
	loc, err := s.Save(context.Background(), "20240305_140709_label.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "s3://labels/uploads/20240305_140709_label.png", loc)
	assert.Equal(t, "/labels/uploads/20240305_140709_label.png", gotPath)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, pngHeader, gotBody)

	s = NewS3Store(clt, "labels", WithPublicURL("https://cdn.example.com/"))
	loc, err = s.Save(context.Background(), "a.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc, "https://cdn.example.com/a.png"))
}
