package scoring

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/bububa/purecheck/agents"
	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/schema"
)

// LLMReasoner scores with a language model
type LLMReasoner struct {
	agent  *agents.Agent[schema.String, Response]
	policy nutrition.Policy
}

var _ Reasoner = (*LLMReasoner)(nil)

// NewAgent returns the reasoning agent, opts set its client, mode and model
func NewAgent(opts ...agents.Option) *agents.Agent[schema.String, Response] {
	base := []agents.Option{
		agents.WithName("reasoner"),
		agents.WithValidator(validator.New()),
	}
	return agents.NewAgent[schema.String, Response](append(base, opts...)...)
}

func NewLLMReasoner(agent *agents.Agent[schema.String, Response], policy nutrition.Policy) *LLMReasoner {
	return &LLMReasoner{agent: agent, policy: policy}
}

func (r *LLMReasoner) Score(ctx context.Context, in Input) (*nutrition.ScoreResult, error) {
	const op = "scoring.LLMReasoner"
	if err := in.validate(op); err != nil {
		return nil, err
	}
	out := new(Response)
	if err := r.agent.RunWithGenerator(ctx, promptGenerator(in), schema.NewString(task), out, nil); err != nil {
		if errors.Is(err, errdefs.ErrExternalTimeout) {
			return nil, err
		}
		return nil, errdefs.Reasoning(op, "reasoning engine failed", err)
	}
	return Normalize(out, in.Analysis, r.policy, "llm:"+r.agent.Model())
}
