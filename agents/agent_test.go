package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/systemprompt/cot"
	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/schema"
)

type rating struct {
	schema.Base
	Score *float64 `json:"inr_score" validate:"required"`
	Grade string   `json:"grade"`
}

// fakeOpenAI answers every chat completion with content and records the last request
func fakeOpenAI(t *testing.T, content string, delay time.Duration) (*openai.Client, *openai.ChatCompletionRequest) {
	t.Helper()
	last := new(openai.ChatCompletionRequest)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(last); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-test",
			Model: last.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			}},
			Usage: openai.Usage{PromptTokens: 3, CompletionTokens: 4},
		})
	}))
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{APIKey: "test", BaseURL: srv.URL + "/v1"}), last
}

func TestAgentTextMode(t *testing.T) {
	clt, last := fakeOpenAI(t, "Thinking done.\n```json\n{\"inr_score\": 72, \"grade\": \"B\"}\n```", 0)
	agent := NewAgent[schema.String, rating](
		WithClient(clt),
		WithMode(TextMode),
		WithModel("o3-mini"),
		WithName("reasoner"),
		WithValidator(validator.New()),
		WithSystemPromptGenerator(cot.New(cot.WithBackground("- You rate food."))),
	)
	out := new(rating)
	resp := new(components.LLMResponse)
	require.NoError(t, agent.Run(context.Background(), schema.NewString("rate it"), out, resp))
	require.NotNil(t, out.Score)
	assert.Equal(t, 72.0, *out.Score)
	assert.Equal(t, "B", out.Grade)
	assert.Equal(t, int64(4), resp.Usage.OutputTokens)

	require.Len(t, last.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, last.Messages[0].Role)
	assert.Contains(t, last.Messages[0].Content, "You rate food.")
	assert.Equal(t, "rate it", last.Messages[1].Content)
	assert.Equal(t, "o3-mini", last.Model)
}

func TestAgentTextModeInvalidOutput(t *testing.T) {
	clt, _ := fakeOpenAI(t, `{"grade": "B"}`, 0)
	agent := NewAgent[schema.String, rating](WithClient(clt), WithMode(TextMode), WithValidator(validator.New()))
	err := agent.Run(context.Background(), schema.NewString("rate it"), new(rating), nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)

	clt, _ = fakeOpenAI(t, "I cannot rate this product.", 0)
	agent = NewAgent[schema.String, rating](WithClient(clt), WithMode(TextMode))
	err = agent.Run(context.Background(), schema.NewString("rate it"), new(rating), nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestAgentPlainString(t *testing.T) {
	clt, _ := fakeOpenAI(t, "  **Sugars** are high.  ", 0)
	agent := NewAgent[schema.String, schema.String](WithClient(clt), WithMode(TextMode))
	var out schema.String
	require.NoError(t, agent.Run(context.Background(), schema.NewString("why?"), &out, nil))
	assert.Equal(t, "**Sugars** are high.", out.String())
}

func TestAgentTimeout(t *testing.T) {
	clt, _ := fakeOpenAI(t, "late", time.Second)
	agent := NewAgent[schema.String, schema.String](WithClient(clt), WithMode(TextMode), WithTimeout(20*time.Millisecond))
	var out schema.String
	err := agent.Run(context.Background(), schema.NewString("hello"), &out, nil)
	assert.ErrorIs(t, err, errdefs.ErrExternalTimeout)
}

func TestAgentClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	clt := NewClient(ClientConfig{APIKey: "test", BaseURL: srv.URL + "/v1", Timeout: 20 * time.Millisecond})
	agent := NewAgent[schema.String, schema.String](WithClient(clt), WithMode(TextMode))
	var out schema.String
	err := agent.Run(context.Background(), schema.NewString("hello"), &out, nil)
	assert.ErrorIs(t, err, errdefs.ErrExternalTimeout)
	assert.Equal(t, http.StatusGatewayTimeout, errdefs.HTTPStatus(err))
}

func TestAgentNoClient(t *testing.T) {
	agent := NewAgent[schema.String, schema.String]()
	var out schema.String
	assert.ErrorIs(t, agent.Run(context.Background(), schema.NewString("hi"), &out, nil), ErrNoClient)
}
