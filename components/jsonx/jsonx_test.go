package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", input: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", input: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "single line", input: "```json{\"a\":1}```", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.input))
		})
	}
}

func TestExtract(t *testing.T) {
	got, err := Extract(`Sure! Here is the rating: {"inr_score": 42, "note": "has } brace"} hope it helps {"x":1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"inr_score": 42, "note": "has } brace"}`, got)

	_, err = Extract("no object here")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestDecode(t *testing.T) {
	var out struct {
		Score float64  `json:"inr_score"`
		Grade string   `json:"grade"`
		Tags  []string `json:"tags"`
	}
	// trailing comma and a truncated object
	text := "```json\n{\"inr_score\": 55.5, \"grade\": \"C\", \"tags\": [\"a\", \"b\",],"
	require.NoError(t, Decode(text, &out))
	assert.Equal(t, 55.5, out.Score)
	assert.Equal(t, "C", out.Grade)
	assert.Equal(t, []string{"a", "b"}, out.Tags)
}
