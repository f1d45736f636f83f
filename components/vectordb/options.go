package vectordb

// Options are the engine wide defaults
type Options struct {
	EngineType EngineType
	TopK       int
	MinScore   float64
}

type Option func(*Options)

func WithEngine(engine EngineType) Option {
	return func(c *Options) {
		c.EngineType = engine
	}
}

// WithTopK sets the default number of results, zero means all
func WithTopK(k int) Option {
	return func(c *Options) {
		c.TopK = k
	}
}

// WithMinScore drops results scoring below score
func WithMinScore(score float64) Option {
	return func(c *Options) {
		c.MinScore = score
	}
}

// SearchOptions narrow a single search
type SearchOptions struct {
	Collection string
	TopK       int
	MinScore   float64
	// Meta must all be present with equal values on a matching record
	Meta    map[string]string
	Include string
	Exclude string
}

type SearchOption func(*SearchOptions)

// NewSearchOptions applies opts over the engine defaults
func NewSearchOptions(defaults Options, opts ...SearchOption) SearchOptions {
	ret := SearchOptions{
		TopK:     defaults.TopK,
		MinScore: defaults.MinScore,
	}
	for _, opt := range opts {
		opt(&ret)
	}
	return ret
}

func SearchWithCollection(name string) SearchOption {
	return func(r *SearchOptions) {
		r.Collection = name
	}
}

func SearchWithTopK(topK int) SearchOption {
	return func(r *SearchOptions) {
		r.TopK = topK
	}
}

func SearchWithMinScore(score float64) SearchOption {
	return func(r *SearchOptions) {
		r.MinScore = score
	}
}

// SearchWithMeta requires the record metadata key to equal value. It may be given several times.
func SearchWithMeta(key, value string) SearchOption {
	return func(r *SearchOptions) {
		if r.Meta == nil {
			r.Meta = make(map[string]string)
		}
		r.Meta[key] = value
	}
}

// SearchWithInclude keeps only records whose text contains v
func SearchWithInclude(v string) SearchOption {
	return func(r *SearchOptions) {
		r.Include = v
	}
}

// SearchWithExclude drops records whose text contains v
func SearchWithExclude(v string) SearchOption {
	return func(r *SearchOptions) {
		r.Exclude = v
	}
}
