// Package rag indexes guideline documents into a vector store and retrieves the passages
// most similar to a question.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/atomic"

	"github.com/bububa/purecheck/components"
	"github.com/bububa/purecheck/components/document"
	"github.com/bububa/purecheck/components/embedder"
	"github.com/bububa/purecheck/components/vectordb"
)

// DefaultCollection is the collection guideline chunks are stored in
const DefaultCollection = "guidelines"

var ErrNoEmbedder = errors.New("rag: embedder not configured")

// Passage is a retrieved piece of guideline text
type Passage struct {
	Text   string  `json:"text"`
	Source string  `json:"source,omitempty"`
	Score  float64 `json:"score"`
}

// Retriever returns up to k passages relevant to query, best first
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Passage, error)
}

type Options struct {
	name          string
	embedder      embedder.Embedder
	chunker       embedder.Chunker
	vectordb      vectordb.Engine
	collection    string
	batchSize     int
	searchOptions []vectordb.SearchOption
	logger        *slog.Logger
}

type Option func(*Options)

func WithName(name string) Option {
	return func(r *Options) {
		r.name = name
	}
}

func WithChunker(chunker embedder.Chunker) Option {
	return func(r *Options) {
		r.chunker = chunker
	}
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(r *Options) {
		r.embedder = e
	}
}

func WithVectorDB(v vectordb.Engine) Option {
	return func(r *Options) {
		r.vectordb = v
	}
}

func WithCollection(name string) Option {
	return func(r *Options) {
		r.collection = name
	}
}

// WithBatchSize limits how many chunks go in one embedding request
func WithBatchSize(size int) Option {
	return func(r *Options) {
		r.batchSize = size
	}
}

func WithSearchOptions(opts ...vectordb.SearchOption) Option {
	return func(r *Options) {
		r.searchOptions = opts
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Options) {
		r.logger = l
	}
}

// Index couples an embedder, a chunker and a vector engine. It is safe for concurrent use
// when the engine is.
type Index struct {
	Options
	ready *atomic.Bool
}

var _ Retriever = (*Index)(nil)

func NewIndex(opts ...Option) (*Index, error) {
	ret := &Index{
		Options: Options{
			name:       "guidelines",
			collection: DefaultCollection,
			batchSize:  64,
		},
		ready: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if ret.vectordb == nil {
		return nil, errors.New("rag: vector engine not configured")
	}
	if ret.chunker == nil {
		ret.chunker = embedder.NewTextChunker()
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret, nil
}

func (r *Index) Name() string {
	return r.name
}

func (r *Index) Collection() string {
	return r.collection
}

// AddDocuments chunks, embeds and stores docs. Every chunk carries the metadata of its document.
// It returns the number of chunks stored.
func (r *Index) AddDocuments(ctx context.Context, docs ...*document.Document) (int, *components.LLMUsage, error) {
	totalUsage := new(components.LLMUsage)
	var total int
	for _, doc := range docs {
		chunks := r.chunker.Chunk(doc.String())
		if len(chunks) == 0 {
			continue
		}
		embedded, err := embedder.EmbedChunks(ctx, r.embedder, chunks, r.batchSize, totalUsage)
		if err != nil {
			return total, totalUsage, fmt.Errorf("embed %s: %w", doc.Meta()[document.MetaSource], err)
		}
		records := make([]vectordb.Record, 0, len(embedded))
		for _, v := range embedded {
			v.Embedding.Object = v.Chunk.Text
			v.Embedding.Meta = doc.Meta()
			records = append(records, vectordb.Record{
				ID:        v.Embedding.UUID(),
				Embedding: v.Embedding,
			})
		}
		if err := r.vectordb.Insert(ctx, r.collection, records...); err != nil {
			return total, totalUsage, err
		}
		total += len(records)
		r.logger.DebugContext(ctx, "indexed document",
			slog.String("source", doc.Meta()[document.MetaSource]),
			slog.Int("chunks", len(records)))
	}
	if total > 0 {
		r.ready.Store(true)
	}
	return total, totalUsage, nil
}

// Ready reports whether the collection holds any chunk
func (r *Index) Ready(ctx context.Context) bool {
	if r.ready.Load() {
		return true
	}
	n, err := r.vectordb.Count(ctx, r.collection)
	if err != nil || n == 0 {
		return false
	}
	r.ready.Store(true)
	return true
}

// Search embeds query and returns the nearest records of the collection
func (r *Index) Search(ctx context.Context, query string, opts ...vectordb.SearchOption) ([]vectordb.Record, *components.LLMUsage, error) {
	embedding := new(embedder.Embedding)
	usage := new(components.LLMUsage)
	if err := r.embedder.Embed(ctx, query, embedding, usage); err != nil {
		return nil, usage, err
	}
	searchOpts := make([]vectordb.SearchOption, 0, len(r.searchOptions)+len(opts)+1)
	searchOpts = append(searchOpts, vectordb.SearchWithCollection(r.collection))
	searchOpts = append(searchOpts, r.searchOptions...)
	searchOpts = append(searchOpts, opts...)
	records, err := r.vectordb.Search(ctx, embedding.Embedding, searchOpts...)
	if err != nil {
		return nil, usage, err
	}
	return records, usage, nil
}

// Retrieve returns the k passages most similar to query. An empty index returns no passage
// without embedding the query.
func (r *Index) Retrieve(ctx context.Context, query string, k int) ([]Passage, error) {
	if !r.Ready(ctx) {
		return nil, nil
	}
	records, _, err := r.Search(ctx, query, vectordb.SearchWithTopK(k))
	if err != nil {
		return nil, err
	}
	ret := make([]Passage, 0, len(records))
	for _, record := range records {
		ret = append(ret, Passage{
			Text:   record.Embedding.Object,
			Source: record.Embedding.Meta[document.MetaSource],
			Score:  record.Score,
		})
	}
	return ret, nil
}

// FormatPassages numbers passages and appends their source
func FormatPassages(passages []Passage) string {
	sb := new(strings.Builder)
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(sb, "%d. %s", i+1, strings.TrimSpace(p.Text))
		if p.Source != "" {
			fmt.Fprintf(sb, "\n   (source: %s)", p.Source)
		}
	}
	return sb.String()
}
