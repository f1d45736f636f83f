package docx

import (
	"bytes"
	"context"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memReader struct {
	*bytes.Reader
}

func TestParse(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Nutrition labelling")
	w.AddParagraph().AddText("Declare energy per 100 g.")
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, new(Parser).Parse(context.Background(), memReader{bytes.NewReader(buf.Bytes())}, &out))
	assert.Contains(t, out.String(), "Nutrition labelling")
	assert.Contains(t, out.String(), "Declare energy per 100 g.")
}
