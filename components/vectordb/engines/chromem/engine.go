package chromem

import (
	"context"
	"runtime"

	"github.com/philippgille/chromem-go"

	"github.com/bububa/purecheck/components/vectordb"
)

type Engine struct {
	db *chromem.DB
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

// New wraps db. Use chromem.NewPersistentDB for an on-disk index.
func New(db *chromem.DB, opts ...vectordb.Option) *Engine {
	ret := &Engine{
		db: db,
	}
	vectordb.WithEngine(vectordb.Chromem)(&ret.Options)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

// Open opens a persistent chromem database at path, an empty path keeps it in memory
func Open(path string, opts ...vectordb.Option) (*Engine, error) {
	if path == "" {
		return New(chromem.NewDB(), opts...), nil
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, err
	}
	return New(db, opts...), nil
}

func (e *Engine) Collection(_ context.Context, name string) (*chromem.Collection, error) {
	// embeddings are always supplied, the embedding func is never called
	return e.db.GetOrCreateCollection(name, nil, nil)
}

func (e *Engine) Count(ctx context.Context, collectionName string) (int, error) {
	col, err := e.Collection(ctx, collectionName)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	col, err := e.Collection(ctx, collectionName)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(records))
	for i := range records {
		recordToDocument(&records[i], &docs[i])
	}
	return col.AddDocuments(ctx, docs, runtime.NumCPU())
}

// Search performs vector similarity search on a collection.
func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := vectordb.NewSearchOptions(e.Options, opts...)
	col, err := e.Collection(ctx, option.Collection)
	if err != nil {
		return nil, err
	}
	// chromem rejects nResults greater than the collection size
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	topK := option.TopK
	if topK <= 0 || topK > count {
		topK = count
	}
	var whereDocument map[string]string
	if option.Include != "" || option.Exclude != "" {
		whereDocument = make(map[string]string, 2)
		if option.Include != "" {
			whereDocument["$contains"] = option.Include
		}
		if option.Exclude != "" {
			whereDocument["$not_contains"] = option.Exclude
		}
	}
	results, err := col.QueryEmbedding(ctx, vectordb.Float32s(vectors), topK, option.Meta, whereDocument)
	if err != nil {
		return nil, err
	}
	searchResults := make([]vectordb.Record, 0, len(results))
	for _, result := range results {
		var rec vectordb.Record
		resultToRecord(&result, &rec)
		if rec.Score < option.MinScore {
			continue
		}
		searchResults = append(searchResults, rec)
	}
	return searchResults, nil
}

func resultToRecord(res *chromem.Result, record *vectordb.Record) {
	record.ID = res.ID
	record.Score = float64(res.Similarity)
	record.Embedding.Object = res.Content
	record.Embedding.Meta = res.Metadata
	record.Embedding.Embedding = vectordb.Float64s(res.Embedding)
}

func recordToDocument(record *vectordb.Record, doc *chromem.Document) {
	if record.ID == "" {
		record.ID = record.Embedding.UUID()
	}
	doc.ID = record.ID
	doc.Content = record.Embedding.Object
	doc.Metadata = record.Embedding.Meta
	doc.Embedding = vectordb.Float32s(record.Embedding.Embedding)
}
