package errdefs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Validation("upload", "invalid file type"), ErrValidation},
		{"extraction", Extraction("extract", "not a label", nil), ErrExtraction},
		{"reasoning", Reasoning("score", "missing score", nil), ErrReasoning},
		{"unavailable is reasoning", ScoringUnavailable("score", errors.New("boom")), ErrReasoning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			wrapped := fmt.Errorf("pipeline: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
		})
	}
}

func TestScoringUnavailable(t *testing.T) {
	err := ScoringUnavailable("scoring.Score", errors.New("bad json"))
	assert.ErrorIs(t, err, ErrScoringUnavailable)
	assert.False(t, errors.Is(Reasoning("scoring.Score", "bad json", nil), ErrScoringUnavailable))
	assert.Contains(t, err.Error(), "scoring unavailable")
	assert.Contains(t, err.Error(), "bad json")
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext("op", nil))

	err := FromContext("extract", context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrExternalTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other := errors.New("connection refused")
	assert.Equal(t, other, FromContext("extract", other))
}

type netTimeout struct{ timeout bool }

func (e netTimeout) Error() string   { return "i/o timeout" }
func (e netTimeout) Timeout() bool   { return e.timeout }
func (e netTimeout) Temporary() bool { return false }

func TestFromContextNetTimeout(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		timeout bool
	}{
		{"client timeout", &url.Error{Op: "Post", URL: "https://api.openai.com/v1/chat/completions", Err: netTimeout{timeout: true}}, true},
		{"wrapped client timeout", fmt.Errorf("error, %w", &url.Error{Op: "Post", URL: "http://localhost", Err: netTimeout{timeout: true}}), true},
		{"dial timeout", &net.OpError{Op: "dial", Net: "tcp", Err: netTimeout{timeout: true}}, true},
		{"refused", &url.Error{Op: "Post", URL: "http://localhost", Err: netTimeout{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromContext("extract", tt.err)
			if !tt.timeout {
				assert.Equal(t, tt.err, err)
				assert.False(t, errors.Is(err, ErrExternalTimeout))
				return
			}
			assert.ErrorIs(t, err, ErrExternalTimeout)
			assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(err))
			assert.Contains(t, err.Error(), "i/o timeout")
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("op", "bad")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(Extraction("op", "bad", nil)))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ScoringUnavailable("op", nil)))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(FromContext("op", context.DeadlineExceeded)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "invalid file type", UserMessage(Validation("op", "invalid file type")))
	assert.Equal(t, "could not read label", UserMessage(Extraction("op", "no nutrition panel", nil)))
	assert.Equal(t, "scoring unavailable", UserMessage(ScoringUnavailable("op", nil)))
}
