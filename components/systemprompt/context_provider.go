package systemprompt

// ContextProvider contributes a titled block of information to a prompt
type ContextProvider interface {
	Title() string
	Info() string
}

// StaticContext is a ContextProvider with fixed content
type StaticContext struct {
	title string
	info  string
}

func NewStaticContext(title string, info string) StaticContext {
	return StaticContext{title: title, info: info}
}

func (c StaticContext) Title() string {
	return c.title
}

func (c StaticContext) Info() string {
	return c.info
}

// ContextFunc computes its info on every render
type ContextFunc struct {
	title string
	fn    func() string
}

func NewContextFunc(title string, fn func() string) ContextFunc {
	return ContextFunc{title: title, fn: fn}
}

func (c ContextFunc) Title() string {
	return c.title
}

func (c ContextFunc) Info() string {
	if c.fn == nil {
		return ""
	}
	return c.fn()
}
