package agents

import (
	"log/slog"
	"time"

	"github.com/bububa/instructor-go/pkg/instructor"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/purecheck/components/systemprompt"
)

type Option func(a *Config)

// WithClient sets the client used for text mode
func WithClient(clt *openai.Client) Option {
	return func(c *Config) {
		c.client = clt
	}
}

// WithInstructor sets the client used for structured mode
func WithInstructor(clt *instructor.InstructorOpenAI) Option {
	return func(c *Config) {
		c.instructor = clt
	}
}

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

func WithMode(mode Mode) Option {
	return func(c *Config) {
		c.mode = mode
	}
}

// WithTimeout bounds each model call
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.timeout = timeout
	}
}

// WithValidator validates text mode outputs after decoding
func WithValidator(v Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}
