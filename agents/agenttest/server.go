// Package agenttest runs a fake OpenAI compatible chat completion endpoint for tests
package agenttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Responder returns the assistant content for a request
type Responder func(req openai.ChatCompletionRequest) string

// Reply always answers content
func Reply(content string) Responder {
	return func(openai.ChatCompletionRequest) string {
		return content
	}
}

// Sequence answers contents in turn, repeating the last one
func Sequence(contents ...string) Responder {
	var (
		mu sync.Mutex
		i  int
	)
	return func(openai.ChatCompletionRequest) string {
		mu.Lock()
		defer mu.Unlock()
		ret := contents[min(i, len(contents)-1)]
		i++
		return ret
	}
}

type Server struct {
	srv      *httptest.Server
	respond  Responder
	delay    time.Duration
	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
}

// NewServer starts a server closed when the test ends
func NewServer(t testing.TB, respond Responder) *Server {
	t.Helper()
	s := &Server{respond: respond}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// SetDelay delays every answer, requests canceled meanwhile get no answer
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// URL returns the base URL of the fake API, including the /v1 prefix
func (s *Server) URL() string {
	return s.srv.URL + "/v1"
}

// Client returns a client pointed at the server
func (s *Server) Client() *openai.Client {
	cfg := openai.DefaultConfig("test")
	cfg.BaseURL = s.URL()
	return openai.NewClientWithConfig(cfg)
}

// Requests returns the chat completion requests received so far
func (s *Server) Requests() []openai.ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), s.requests...)
}

// Last returns the last request, or the zero request
func (s *Server) Last() openai.ChatCompletionRequest {
	reqs := s.Requests()
	if len(reqs) == 0 {
		return openai.ChatCompletionRequest{}
	}
	return reqs[len(reqs)-1]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	delay := s.delay
	s.mu.Unlock()
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
		Model: req.Model,
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: s.respond(req),
			},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	})
}
