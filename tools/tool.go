// Package tools holds small typed tools used by the scoring engines
package tools

import (
	"context"

	"github.com/bububa/purecheck/schema"
)

// Tool runs on a typed input and fills a typed output
type Tool[I schema.Schema, O schema.Schema] interface {
	Title() string
	Description() string
	Run(context.Context, *I, *O) error
}

// Info carries the title and description a tool presents itself with
type Info struct {
	title       string
	description string
}

type Option func(*Info)

func WithTitle(title string) Option {
	return func(i *Info) {
		i.title = title
	}
}

func WithDescription(desc string) Option {
	return func(i *Info) {
		i.description = desc
	}
}

// NewInfo applies opts over the given defaults
func NewInfo(title, description string, opts ...Option) Info {
	ret := Info{title: title, description: description}
	for _, opt := range opts {
		opt(&ret)
	}
	return ret
}

func (i Info) Title() string {
	return i.title
}

func (i Info) Description() string {
	return i.description
}
