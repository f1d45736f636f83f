// Package systemprompt assembles system prompts from fixed sections and pluggable context providers.
package systemprompt

import "fmt"

// Generator renders a system prompt
type Generator interface {
	Generate() string
}

// Contexts is an ordered set of context providers keyed by title.
// The zero value is ready to use.
type Contexts struct {
	providers []ContextProvider
}

// Add registers providers in order. A provider replaces the registered one with the same title
// and keeps its position.
func (c *Contexts) Add(providers ...ContextProvider) {
	for _, p := range providers {
		if idx := c.index(p.Title()); idx >= 0 {
			c.providers[idx] = p
			continue
		}
		c.providers = append(c.providers, p)
	}
}

// Get returns the provider registered under title
func (c *Contexts) Get(title string) (ContextProvider, bool) {
	if idx := c.index(title); idx >= 0 {
		return c.providers[idx], true
	}
	return nil, false
}

func (c *Contexts) Remove(titles ...string) {
	for _, title := range titles {
		if idx := c.index(title); idx >= 0 {
			c.providers = append(c.providers[:idx], c.providers[idx+1:]...)
		}
	}
}

func (c *Contexts) Len() int {
	return len(c.providers)
}

// Render returns one "## title" block per provider, skipping providers without info
func (c *Contexts) Render() []string {
	var ret []string
	for _, p := range c.providers {
		if info := p.Info(); info != "" {
			ret = append(ret, fmt.Sprintf("## %s", p.Title()), info, "")
		}
	}
	return ret
}

func (c *Contexts) index(title string) int {
	for i, p := range c.providers {
		if p.Title() == title {
			return i
		}
	}
	return -1
}
