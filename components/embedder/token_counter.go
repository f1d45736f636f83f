package embedder

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultEncoding = "cl100k_base"

// TokenCounter measures chunk sizes
type TokenCounter interface {
	Count(text string) int
}

// WordCounter approximates tokens by whitespace separated words
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TikTokenCounter counts the tokens an OpenAI model sees. cl100k_base matches
// text-embedding-ada-002.
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tiktoken encoding %q: %w", encoding, err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

func (c *TikTokenCounter) Count(text string) int {
	return len(c.tke.Encode(text, nil, nil))
}

// NewTokenCounter returns the counter named by kind: "words" or "tiktoken"
func NewTokenCounter(kind string, encoding string) (TokenCounter, error) {
	switch kind {
	case "", "words":
		return WordCounter{}, nil
	case "tiktoken":
		if encoding == "" {
			encoding = DefaultEncoding
		}
		return NewTikTokenCounter(encoding)
	}
	return nil, fmt.Errorf("unknown token counter %q", kind)
}
