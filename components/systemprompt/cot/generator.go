// Package cot is a Chain-of-Thought system prompt generator
package cot

import (
	"fmt"
	"strings"

	"github.com/bububa/purecheck/components/systemprompt"
)

const (
	identitySection = "IDENTITY and PURPOSE"
	stepsSection    = "INTERNAL ASSISTANT STEPS"
	outputSection   = "OUTPUT INSTRUCTIONS"
	contextSection  = "EXTRA INFORMATION AND CONTEXT"
)

const (
	defaultBackground = "- This is a conversation with a helpful and friendly AI assistant."
	jsonInstruction   = "- Always respond using the proper JSON schema."
	contextHint       = "- Always use the available additional information and context to enhance the response."
)

// Generator renders identity, steps, output instructions and context sections.
// Context providers are managed through the embedded Contexts.
type Generator struct {
	systemprompt.Contexts
	background []string
	steps      []string
	output     []string
	jsonOutput bool
}

var _ systemprompt.Generator = (*Generator)(nil)

func New(options ...Option) *Generator {
	ret := &Generator{jsonOutput: true}
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.background) == 0 {
		ret.background = []string{defaultBackground}
	}
	return ret
}

// Generate renders the sections in a fixed order, so equal inputs give equal prompts
func (g *Generator) Generate() string {
	output := append([]string(nil), g.output...)
	if g.jsonOutput {
		output = append(output, jsonInstruction)
	}
	output = append(output, contextHint)

	var parts []string
	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		parts = append(parts, fmt.Sprintf("# %s", title))
		parts = append(parts, lines...)
		parts = append(parts, "")
	}
	section(identitySection, g.background)
	section(stepsSection, g.steps)
	section(outputSection, output)
	section(contextSection, g.Render())
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
