package extractor

import (
	"context"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/agents/agenttest"
	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/schema"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

const labelAnswer = "Here is the data:\n```json\n" + `{
  "is_nutrition_label": true,
  "product_name": "Choco Crunch",
  "brand": "Acme",
  "product_type": "Solid",
  "package_size": "250g",
  "nutritional_info_per_100g": {
    "energy_kcal": 480,
    "sugars_g": "25 g",
    "saturated_fat_g": 9,
    "sodium_mg": "Not Available",
    "protein_g": 7,
    "fiber_g": 3,
    "trans_fat_g": 0.2,
    "other_nutrients": {"calcium_mg": 110}
  }
}` + "\n```"

func newVision(t *testing.T, respond agenttest.Responder) (*Vision, *agenttest.Server) {
	t.Helper()
	srv := agenttest.NewServer(t, respond)
	return New(NewAgent(srv.Client(), "gpt-4o", time.Second, nil)), srv
}

func TestExtract(t *testing.T) {
	v, srv := newVision(t, agenttest.Reply(labelAnswer))
	product, err := v.Extract(context.Background(), schema.NewImage(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "Choco Crunch", product.Name)
	assert.Equal(t, "Acme", product.DisplayBrand())
	assert.Equal(t, nutrition.Known(25), product.Nutrition.Record.Get(nutrition.SugarsG))
	assert.False(t, product.Nutrition.Record.Get(nutrition.SodiumMg).IsKnown())
	assert.Equal(t, nutrition.Known(110), product.Nutrition.Other["calcium_mg"])

	req := srv.Last()
	assert.Equal(t, "gpt-4o", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	parts := req.Messages[1].MultiContent
	require.Len(t, parts, 2)
	assert.Equal(t, DefaultInstruction, parts[0].Text)
	require.NotNil(t, parts[1].ImageURL)
	assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{name: "not a label", answer: `{"is_nutrition_label": false, "product_name": "Cat"}`},
		{name: "nothing read", answer: `{"product_name": "Blurry", "nutritional_info_per_100g": {"sugars_g": "N/A"}}`},
		{name: "no json", answer: "Sorry, I cannot read this image."},
		{name: "negative value", answer: `{"nutritional_info_per_100g": {"sugars_g": -4}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newVision(t, agenttest.Reply(tt.answer))
			_, err := v.Extract(context.Background(), schema.NewImage(pngHeader))
			assert.ErrorIs(t, err, errdefs.ErrExtraction)
			assert.Equal(t, 422, errdefs.HTTPStatus(err))
		})
	}
}

func TestExtractEmptyImage(t *testing.T) {
	v, srv := newVision(t, agenttest.Reply(labelAnswer))
	_, err := v.Extract(context.Background(), schema.Image{})
	assert.ErrorIs(t, err, errdefs.ErrValidation)
	assert.Empty(t, srv.Requests())
}

func TestExtractTimeout(t *testing.T) {
	srv := agenttest.NewServer(t, agenttest.Reply(labelAnswer))
	srv.SetDelay(time.Second)
	v := New(NewAgent(srv.Client(), "gpt-4o", 20*time.Millisecond, nil))
	_, err := v.Extract(context.Background(), schema.NewImage(pngHeader))
	assert.ErrorIs(t, err, errdefs.ErrExternalTimeout)
	assert.NotErrorIs(t, err, errdefs.ErrExtraction)
}
