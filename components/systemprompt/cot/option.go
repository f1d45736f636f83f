package cot

import "github.com/bububa/purecheck/components/systemprompt"

type Option func(g *Generator)

// WithBackground sets the identity lines
func WithBackground(lines ...string) Option {
	return func(g *Generator) {
		g.background = lines
	}
}

// WithSteps sets the reasoning steps the model follows before answering
func WithSteps(lines ...string) Option {
	return func(g *Generator) {
		g.steps = lines
	}
}

func WithOutputInstructions(lines ...string) Option {
	return func(g *Generator) {
		g.output = lines
	}
}

// WithPlainText drops the JSON schema output instruction, for free text answers
func WithPlainText() Option {
	return func(g *Generator) {
		g.jsonOutput = false
	}
}

func WithContext(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.Contexts.Add(providers...)
	}
}
