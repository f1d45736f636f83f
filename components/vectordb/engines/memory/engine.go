package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bububa/purecheck/components/embedder"
	"github.com/bububa/purecheck/components/vectordb"
)

// Engine implements the vectordb.Engine interface using in-memory storage.
// It is safe for concurrent use.
type Engine struct {
	// collections stores all vector collections in memory
	collections *sync.Map
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

// Collection is a named set of records keyed by ID
type Collection struct {
	// records holds the actual records in the collection
	records map[string]vectordb.Record
	mu      sync.RWMutex
}

// Upsert adds records, replacing existing ones with the same ID
func (c *Collection) Upsert(records ...vectordb.Record) {
	c.mu.Lock()
	for _, r := range records {
		c.records[r.ID] = r
	}
	c.mu.Unlock()
}

// Records returns a snapshot of the records
func (c *Collection) Records() []vectordb.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := make([]vectordb.Record, 0, len(c.records))
	for _, r := range c.records {
		ret = append(ret, r)
	}
	return ret
}

// Len returns the number of records
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// New creates a new in-memory vector database instance.
func New(opts ...vectordb.Option) *Engine {
	ret := &Engine{
		collections: new(sync.Map),
	}
	vectordb.WithEngine(vectordb.Memory)(&ret.Options)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

// HasCollection checks if a collection with the given name exists in the database.
func (e *Engine) HasCollection(name string) bool {
	_, exists := e.collections.Load(name)
	return exists
}

// DropCollection removes a collection and all its data from the database.
func (e *Engine) DropCollection(name string) {
	e.collections.Delete(name)
}

// Collection returns the named collection, creating it when missing
func (e *Engine) Collection(_ context.Context, name string) *Collection {
	col, _ := e.collections.LoadOrStore(name, &Collection{records: make(map[string]vectordb.Record)})
	return col.(*Collection)
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	docs := make([]vectordb.Record, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		docs = append(docs, record)
	}
	e.Collection(ctx, collectionName).Upsert(docs...)
	return nil
}

func (e *Engine) Count(ctx context.Context, collectionName string) (int, error) {
	return e.Collection(ctx, collectionName).Len(), nil
}

// Search ranks the records of the collection by cosine similarity to vectors
func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := vectordb.NewSearchOptions(e.Options, opts...)
	col := e.Collection(ctx, option.Collection)
	var records []vectordb.Record
	for _, record := range col.Records() {
		if !recordMatchesFilters(&record, &option) {
			continue
		}
		score, err := embedder.Cosine(vectors, record.Embedding.Embedding)
		if err != nil {
			return nil, err
		}
		if score < option.MinScore {
			continue
		}
		record.Score = score
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score == records[j].Score {
			return records[i].ID < records[j].ID
		}
		return records[i].Score > records[j].Score
	})
	if option.TopK > 0 && option.TopK < len(records) {
		records = records[:option.TopK]
	}
	return records, nil
}

// recordMatchesFilters checks if a record matches the metadata and content filters.
// A record's metadata must have all the fields in the meta filter.
func recordMatchesFilters(record *vectordb.Record, opts *vectordb.SearchOptions) bool {
	for k, v := range opts.Meta {
		if record.Embedding.Meta[k] != v {
			return false
		}
	}
	if opts.Include != "" && !strings.Contains(record.Embedding.Object, opts.Include) {
		return false
	}
	if opts.Exclude != "" && strings.Contains(record.Embedding.Object, opts.Exclude) {
		return false
	}
	return true
}
