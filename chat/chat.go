// Package chat answers follow-up questions about the analyzed product or about the
// FSSAI guidelines.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bububa/purecheck/agents"
	"github.com/bububa/purecheck/agents/rag"
	"github.com/bububa/purecheck/components/systemprompt"
	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/schema"
	"github.com/bububa/purecheck/session"
)

// DefaultTopK is how many guideline passages are retrieved
const DefaultTopK = 3

// Mode chooses where an answer's context comes from
type Mode string

const (
	// ModeAuto uses the product when the session has one, the guidelines otherwise
	ModeAuto Mode = "auto"
	// ModeProduct answers from the analyzed product, falling back to guidelines without one
	ModeProduct Mode = "product"
	// ModeGuideline always answers from retrieved guideline passages
	ModeGuideline Mode = "guideline"
)

// ParseMode parses a requested mode, "" is ModeAuto
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeProduct, ModeGuideline:
		return m, nil
	}
	return "", errdefs.Validation("chat.ParseMode", fmt.Sprintf("unknown chat mode %q", s))
}

// Resolve returns the mode actually used given whether a product context is present
func (m Mode) Resolve(hasProduct bool) Mode {
	if m == ModeGuideline || !hasProduct {
		return ModeGuideline
	}
	return ModeProduct
}

type Request struct {
	Question string
	Mode     Mode
	// Product is the session context, nil when no product was analyzed
	Product *session.Context
}

type Answer struct {
	Text     string        `json:"response"`
	Mode     Mode          `json:"mode"`
	Passages []rag.Passage `json:"passages,omitempty"`
}

// Service is safe for concurrent use
type Service struct {
	agent     *agents.Agent[schema.String, schema.String]
	retriever rag.Retriever
	topK      int
	logger    *slog.Logger
}

type Option func(*Service)

func WithTopK(k int) Option {
	return func(s *Service) {
		s.topK = k
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewAgent returns the free text chat agent, opts set its client and model
func NewAgent(opts ...agents.Option) *agents.Agent[schema.String, schema.String] {
	base := []agents.Option{
		agents.WithName("chat"),
		agents.WithMode(agents.TextMode),
	}
	return agents.NewAgent[schema.String, schema.String](append(base, opts...)...)
}

// New returns a Service. A nil retriever answers guideline questions without passages.
func New(agent *agents.Agent[schema.String, schema.String], retriever rag.Retriever, opts ...Option) *Service {
	ret := &Service{
		agent:     agent,
		retriever: retriever,
		topK:      DefaultTopK,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}

// Ask answers req. The answer text is the chat model's output, trimmed.
func (s *Service) Ask(ctx context.Context, req Request) (*Answer, error) {
	const op = "chat.Ask"
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, errdefs.Validation(op, "No message provided")
	}
	if req.Mode == "" {
		req.Mode = ModeAuto
	}
	mode := req.Mode.Resolve(req.Product != nil)
	ret := &Answer{Mode: mode}

	var g systemprompt.Generator
	switch mode {
	case ModeProduct:
		g = productGenerator(req.Product)
	default:
		if s.retriever != nil {
			passages, err := s.retriever.Retrieve(ctx, question, s.topK)
			if err != nil {
				return nil, fmt.Errorf("retrieving guidelines: %w", errdefs.FromContext(op, err))
			}
			ret.Passages = passages
		} else {
			s.logger.WarnContext(ctx, "no guideline index configured")
		}
		g = guidelineGenerator(ret.Passages)
	}
	s.logger.DebugContext(ctx, "answering question",
		slog.String("mode", string(mode)),
		slog.String("requested_mode", string(req.Mode)),
		slog.Int("passages", len(ret.Passages)))

	var out schema.String
	if err := s.agent.RunWithGenerator(ctx, g, schema.NewString(question), &out, nil); err != nil {
		return nil, err
	}
	ret.Text = strings.TrimSpace(out.String())
	return ret, nil
}
