package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestStringify(t *testing.T) {
	type Question struct {
		Base
		Text string `json:"text"`
	}
	assert.Equal(t, "plain", Stringify(String("plain")))
	assert.Equal(t, "pointer", Stringify(NewString("pointer")))
	assert.Equal(t, `{"text":"hello"}`, Stringify(&Question{Text: "hello"}))
	assert.Equal(t, "read the label", Stringify(NewText("read the label")))
}

func TestImageDataURL(t *testing.T) {
	img := NewImage(pngHeader)
	assert.Equal(t, "image/png", img.MIME)
	url := img.DataURL()
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)
}

func TestAttachementURLs(t *testing.T) {
	var nilAttachement *Attachement
	assert.Empty(t, nilAttachement.URLs())

	a := &Attachement{
		ImageURLs: []string{"https://example.com/label.jpg"},
		Images:    []Image{NewImage(pngHeader)},
	}
	urls := a.URLs()
	require.Len(t, urls, 2)
	assert.Equal(t, "https://example.com/label.jpg", urls[0])
	assert.True(t, strings.HasPrefix(urls[1], "data:image/png"))
}

func TestBaseAttachement(t *testing.T) {
	var b Base
	assert.Nil(t, b.Attachement())
	a := &Attachement{ImageURLs: []string{"x"}}
	b.SetAttachement(a)
	assert.Same(t, a, b.Attachement())
}
