package embedder

// Provider names the service behind an Embedder
type Provider = string

const (
	ProviderOpenAI Provider = "OpenAI"
	ProviderAzure  Provider = "Azure"
	ProviderCohere Provider = "Cohere"
	ProviderGemini Provider = "Gemini"
)

// Options is embedded by every Embedder implementation
type Options struct {
	provider   Provider
	model      string
	dimensions int
}

type Option func(*Options)

func WithProvider(provider Provider) Option {
	return func(o *Options) {
		o.provider = provider
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.model = model
	}
}

// WithDimensions asks the model for shorter vectors. Zero keeps the model default.
func WithDimensions(n int) Option {
	return func(o *Options) {
		o.dimensions = n
	}
}

func (o Options) Provider() Provider {
	return o.provider
}

func (o Options) Model() string {
	return o.model
}

func (o Options) Dimensions() int {
	return o.dimensions
}
