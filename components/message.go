package components

import (
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/purecheck/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'assistant')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
)

// Message represents a message sent to a language model
type Message struct {
	content schema.Schema
	// role is the role of the message sender
	role MessageRole
	// turnID is Unique identifier for the turn this message belongs to.
	turnID string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// Attachement returns message attachement
func (m Message) Attachement() *schema.Attachement {
	if m.content == nil {
		return nil
	}
	return m.content.Attachement()
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// StringifiedContent returns the text content of the message
func (m Message) StringifiedContent() string {
	if m.content == nil {
		return ""
	}
	return schema.Stringify(m.content)
}

// ToOpenAI convert message to openai ChatCompletionMessage.
// Attached images become image_url parts after the text part.
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	urls := m.Attachement().URLs()
	if len(urls) == 0 {
		dist.Content = m.StringifiedContent()
		return
	}
	dist.MultiContent = make([]openai.ChatMessagePart, 0, len(urls)+1)
	dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: m.StringifiedContent(),
	})
	for _, imageURL := range urls {
		dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    imageURL,
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}
}
