// Package extractor reads the nutrition facts of a packaged-food label photo with a
// vision language model.
package extractor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/purecheck/agents"
	"github.com/bububa/purecheck/components/systemprompt/cot"
	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/schema"
)

const op = "extractor.Extract"

// Extractor turns a label image into a Product
type Extractor interface {
	Extract(ctx context.Context, img schema.Image) (*nutrition.Product, error)
}

// Output is what the vision model answers
type Output struct {
	schema.Base
	// IsNutritionLabel is false when the model decided the image is not a nutrition label
	IsNutritionLabel *bool `json:"is_nutrition_label,omitempty"`
	nutrition.Product
}

// Vision is an Extractor backed by a vision model agent
type Vision struct {
	agent       *agents.Agent[schema.Text, Output]
	instruction string
	logger      *slog.Logger
}

var _ Extractor = (*Vision)(nil)

type Option func(*Vision)

func WithInstruction(instruction string) Option {
	return func(v *Vision) {
		v.instruction = instruction
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(v *Vision) {
		v.logger = l
	}
}

// NewAgent returns the vision agent used by Vision. JSON is recovered from the free text answer.
// opts are applied last, e.g. to override the temperature.
func NewAgent(clt *openai.Client, model string, timeout time.Duration, logger *slog.Logger, opts ...agents.Option) *agents.Agent[schema.Text, Output] {
	base := []agents.Option{
		agents.WithName("extractor"),
		agents.WithClient(clt),
		agents.WithMode(agents.TextMode),
		agents.WithModel(model),
		agents.WithTemperature(0.1),
		agents.WithMaxTokens(2000),
		agents.WithTimeout(timeout),
		agents.WithValidator(validator.New()),
		agents.WithLogger(logger),
		agents.WithSystemPromptGenerator(cot.New(cot.WithBackground(background...))),
	}
	return agents.NewAgent[schema.Text, Output](append(base, opts...)...)
}

func New(agent *agents.Agent[schema.Text, Output], opts ...Option) *Vision {
	ret := &Vision{
		agent:       agent,
		instruction: DefaultInstruction,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}

// Extract sends img to the vision model. It fails with an extraction error when the answer
// cannot be decoded, the model says the image is not a label, or no tracked nutrient was read.
func (v *Vision) Extract(ctx context.Context, img schema.Image) (*nutrition.Product, error) {
	if len(img.Data) == 0 {
		return nil, errdefs.Validation(op, "empty image")
	}
	in := schema.NewText(v.instruction).WithImages(img)
	out := new(Output)
	if err := v.agent.Run(ctx, in, out, nil); err != nil {
		if errors.Is(err, errdefs.ErrExternalTimeout) {
			return nil, err
		}
		return nil, errdefs.Extraction(op, "vision model returned no parseable nutrition data", err)
	}
	if out.IsNutritionLabel != nil && !*out.IsNutritionLabel {
		return nil, errdefs.Extraction(op, "image is not a nutrition label", nil)
	}
	if out.Nutrition.Record.KnownCount() == 0 {
		return nil, errdefs.Extraction(op, "no nutrient values could be read", nil)
	}
	if unknowns := out.Nutrition.Record.Unknowns(); len(unknowns) > 0 {
		v.logger.DebugContext(ctx, "label missing nutrients", slog.Any("nutrients", unknowns))
	}
	product := out.Product
	return &product, nil
}
