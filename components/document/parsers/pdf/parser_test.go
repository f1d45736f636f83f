package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memReader struct {
	*bytes.Reader
}

func TestParseRejectsGarbage(t *testing.T) {
	var out bytes.Buffer
	err := NewParser().Parse(context.Background(), memReader{bytes.NewReader([]byte("not a pdf"))}, &out)
	assert.Error(t, err)
}
