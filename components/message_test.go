package components

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/schema"
)

type labelRequest struct {
	schema.Base
	Instruction string `json:"instruction"`
}

func TestMessageToOpenAI(t *testing.T) {
	msg := NewMessage(UserRole, schema.NewString("what is in this?"))
	var dist openai.ChatCompletionMessage
	msg.ToOpenAI(&dist)
	assert.Equal(t, openai.ChatMessageRoleUser, dist.Role)
	assert.Equal(t, "what is in this?", dist.Content)
	assert.Empty(t, dist.MultiContent)
}

func TestMessageToOpenAIWithImage(t *testing.T) {
	req := &labelRequest{Instruction: "read the label"}
	req.SetAttachement(&schema.Attachement{
		Images: []schema.Image{{Data: []byte("fake"), MIME: "image/jpeg"}},
	})
	var dist openai.ChatCompletionMessage
	NewMessage(UserRole, req).SetTurnID(NewTurnID()).ToOpenAI(&dist)
	assert.Empty(t, dist.Content)
	require.Len(t, dist.MultiContent, 2)
	assert.Equal(t, openai.ChatMessagePartTypeText, dist.MultiContent[0].Type)
	assert.Equal(t, `{"instruction":"read the label"}`, dist.MultiContent[0].Text)
	require.NotNil(t, dist.MultiContent[1].ImageURL)
	assert.Equal(t, "data:image/jpeg;base64,ZmFrZQ==", dist.MultiContent[1].ImageURL.URL)
}

func TestLLMUsageMerge(t *testing.T) {
	u := &LLMUsage{InputTokens: 1, OutputTokens: 2}
	u.Merge(&LLMUsage{InputTokens: 10, OutputTokens: 20})
	u.Merge(nil)
	assert.Equal(t, &LLMUsage{InputTokens: 11, OutputTokens: 22}, u)

	var resp LLMResponse
	resp.FromOpenAI(&openai.ChatCompletionResponse{
		ID:    "chatcmpl-1",
		Model: "gpt-4o",
		Usage: openai.Usage{PromptTokens: 5, CompletionTokens: 7},
	})
	assert.Equal(t, AssistantRole, resp.Role)
	assert.Equal(t, int64(7), resp.Usage.OutputTokens)
}
