package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/bububa/instructor-go/pkg/instructor"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/jsonx"
	"github.com/bububa/purecheck/components/systemprompt"
	"github.com/bububa/purecheck/components/systemprompt/cot"
	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/schema"
)

var (
	// ErrInvalidOutput indicates the model answered but the answer could not be decoded
	// into the output schema
	ErrInvalidOutput = errors.New("invalid model output")
	// ErrNoClient indicates the agent has no client for its mode
	ErrNoClient = errors.New("agent client not configured")
)

// Mode selects how an Agent obtains its output
type Mode int

const (
	// StructuredMode decodes the output with instructor JSON mode and validation retries
	StructuredMode Mode = iota
	// TextMode sends a plain completion and recovers JSON from the free text answer.
	// Used with reasoning models that reject response_format.
	TextMode
)

// Unmarshaler is implemented by outputs that decode the raw answer themselves, e.g. schema.String
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Config represents general agents configuration
type Config struct {
	// client Client for plain completions
	client *openai.Client
	// instructor Client for structured completions
	instructor *instructor.InstructorOpenAI
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// name is Agent name presentation
	name string
	// mode structured or text
	mode Mode
	// timeout bounds every call, 0 means no bound beyond ctx
	timeout time.Duration
	// validate validates text mode outputs
	validate Validator
	logger   *slog.Logger
}

// Validator validates a decoded output struct
type Validator interface {
	Struct(any) error
}

// Agent class for single turn model calls.
// An Agent holds no conversation state and is safe for concurrent use.
type Agent[I schema.Schema, O schema.Schema] struct {
	Config
	startHook func(context.Context, *Agent[I, O], *I)
	endHook   func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)
	errorHook func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)
}

// NewAgent initializes the Agent
func NewAgent[I schema.Schema, O schema.Schema](options ...Option) *Agent[I, O] {
	ret := new(Agent[I, O])
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}

func (a Agent[I, O]) Name() string {
	return a.name
}

func (a Agent[I, O]) Model() string {
	return a.model
}

func (a *Agent[I, O]) SetStartHook(fn func(context.Context, *Agent[I, O], *I)) {
	a.startHook = fn
}

func (a *Agent[I, O]) SetEndHook(fn func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)) {
	a.endHook = fn
}

func (a *Agent[I, O]) SetErrorHook(fn func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)) {
	a.errorHook = fn
}

// SystemPrompt returns the system prompt
func (a *Agent[I, O]) SystemPrompt() string {
	return a.systemPromptGenerator.Generate()
}

// Run runs the agent with the given user input synchronously.
func (a *Agent[I, O]) Run(ctx context.Context, userInput *I, output *O, llmResp *components.LLMResponse) error {
	return a.RunWithGenerator(ctx, a.systemPromptGenerator, userInput, output, llmResp)
}

// RunWithGenerator runs the agent with a per call system prompt generator.
// Request specific context is passed this way so the agent itself is never mutated.
func (a *Agent[I, O]) RunWithGenerator(ctx context.Context, g systemprompt.Generator, userInput *I, output *O, llmResp *components.LLMResponse) error {
	if fn := a.startHook; fn != nil {
		fn(ctx, a, userInput)
	}
	if llmResp == nil {
		llmResp = new(components.LLMResponse)
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	messages := make([]components.Message, 0, 2)
	if g != nil {
		if prompt := g.Generate(); prompt != "" {
			messages = append(messages, *components.NewMessage(components.SystemRole, schema.String(prompt)))
		}
	}
	if userInput != nil {
		messages = append(messages, *components.NewMessage(components.UserRole, *userInput).SetTurnID(components.NewTurnID()))
	}
	start := time.Now()
	err := a.response(ctx, messages, output, llmResp)
	logger := a.logger.With(slog.String("agent", a.name), slog.String("model", a.model), slog.Duration("elapsed", time.Since(start)))
	if err != nil {
		err = errdefs.FromContext(a.op(), err)
		logger.WarnContext(ctx, "model call failed", slog.Any("error", err))
		if fn := a.errorHook; fn != nil {
			fn(ctx, a, userInput, llmResp, err)
		}
		return err
	}
	if usage := llmResp.Usage; usage != nil {
		logger = logger.With(slog.Int64("input_tokens", usage.InputTokens), slog.Int64("output_tokens", usage.OutputTokens))
	}
	logger.DebugContext(ctx, "model call finished")
	if fn := a.endHook; fn != nil {
		fn(ctx, a, userInput, output, llmResp)
	}
	return nil
}

func (a *Agent[I, O]) op() string {
	if a.name == "" {
		return "agents.Run"
	}
	return a.name
}

func (a *Agent[I, O]) request(messages []components.Message) openai.ChatCompletionRequest {
	chatReq := openai.ChatCompletionRequest{
		Model:               a.model,
		Temperature:         a.temperature,
		MaxCompletionTokens: a.maxTokens,
		Messages:            make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		chatReq.Messages = append(chatReq.Messages, *v)
	}
	return chatReq
}

// response obtains a response from the language model synchronously
func (a *Agent[I, O]) response(ctx context.Context, messages []components.Message, output *O, llmResp *components.LLMResponse) error {
	chatReq := a.request(messages)
	switch a.mode {
	case TextMode:
		if a.client == nil {
			return ErrNoClient
		}
		res, err := a.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return err
		}
		llmResp.FromOpenAI(&res)
		if len(res.Choices) == 0 {
			return fmt.Errorf("%w: empty choices", ErrInvalidOutput)
		}
		return a.decode(res.Choices[0].Message.Content, output)
	default:
		if a.instructor == nil {
			return ErrNoClient
		}
		res, err := a.instructor.CreateChatCompletion(ctx, chatReq, output)
		if err != nil {
			return err
		}
		llmResp.FromOpenAI(&res)
	}
	return nil
}

func (a *Agent[I, O]) decode(content string, output *O) error {
	content = strings.TrimSpace(content)
	if u, ok := any(output).(Unmarshaler); ok {
		return u.Unmarshal([]byte(content))
	}
	if err := jsonx.Decode(content, output); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	if a.validate == nil {
		return nil
	}
	if v := reflect.ValueOf(output); v.Kind() == reflect.Ptr && v.Elem().Kind() == reflect.Struct {
		if err := a.validate.Struct(output); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOutput, err)
		}
	}
	return nil
}
