// Package milvus keeps guideline chunks in a Milvus server. Each collection holds the chunk
// id, text, metadata and a cosine HNSW indexed vector.
package milvus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/bububa/purecheck/components/embedder"
	"github.com/bububa/purecheck/components/vectordb"
)

const (
	fieldID        = "id"
	fieldContent   = "content"
	fieldMeta      = "meta"
	fieldEmbedding = "embedding"

	maxContentLength = 65535
	// maxTopK is the largest topK a Milvus search accepts
	maxTopK = 16384
)

// ErrNoAddress is returned by Open without a server address
var ErrNoAddress = errors.New("milvus: address is required")

// Config locates the Milvus server
type Config struct {
	Address  string
	Username string
	Password string
	DBName   string
}

type Engine struct {
	db client.Client
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

func New(db client.Client, opts ...vectordb.Option) *Engine {
	ret := &Engine{
		db: db,
	}
	vectordb.WithEngine(vectordb.Milvus)(&ret.Options)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

// Open connects to the server of cfg
func Open(ctx context.Context, cfg Config, opts ...vectordb.Option) (*Engine, error) {
	if cfg.Address == "" {
		return nil, ErrNoAddress
	}
	db, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("milvus: connect %s: %w", cfg.Address, err)
	}
	return New(db, opts...), nil
}

func (e *Engine) Close() error {
	return e.db.Close()
}

func (e *Engine) createCollection(ctx context.Context, name string, dim int) error {
	schema := entity.NewSchema().WithName(name).WithAutoID(false).
		WithField(entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(36).WithIsPrimaryKey(true)).
		WithField(entity.NewField().WithName(fieldContent).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxContentLength)).
		WithField(entity.NewField().WithName(fieldMeta).WithDataType(entity.FieldTypeJSON)).
		WithField(entity.NewField().WithName(fieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dim)))
	if err := e.db.CreateCollection(ctx, schema, 1); err != nil {
		return err
	}
	idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return err
	}
	return e.db.CreateIndex(ctx, name, fieldEmbedding, idx, false)
}

// Insert upserts records, creating the collection with the dimension of the first record
func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}
	dim := len(records[0].Embedding.Embedding)
	if dim == 0 {
		return errors.New("milvus: empty embedding")
	}
	if exists, err := e.db.HasCollection(ctx, collectionName); err != nil {
		return err
	} else if !exists {
		if err := e.createCollection(ctx, collectionName, dim); err != nil {
			return err
		}
	}
	var (
		ids      = make([]string, 0, len(records))
		contents = make([]string, 0, len(records))
		metas    = make([][]byte, 0, len(records))
		vectors  = make([][]float32, 0, len(records))
	)
	for _, record := range records {
		if len(record.Embedding.Embedding) != dim {
			return embedder.ErrVectorLengthMismatch
		}
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		meta := record.Embedding.Meta
		if meta == nil {
			meta = map[string]string{}
		}
		bs, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		ids = append(ids, record.ID)
		contents = append(contents, record.Embedding.Object)
		metas = append(metas, bs)
		vectors = append(vectors, vectordb.Float32s(record.Embedding.Embedding))
	}
	if _, err := e.db.Upsert(ctx, collectionName, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnJSONBytes(fieldMeta, metas),
		entity.NewColumnFloatVector(fieldEmbedding, dim, vectors),
	); err != nil {
		return err
	}
	return e.db.Flush(ctx, collectionName, false)
}

func (e *Engine) Count(ctx context.Context, collectionName string) (int, error) {
	exists, err := e.db.HasCollection(ctx, collectionName)
	if err != nil || !exists {
		return 0, err
	}
	stats, err := e.db.GetCollectionStatistics(ctx, collectionName)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(stats["row_count"])
}

// Search performs vector similarity search on a collection.
func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := vectordb.NewSearchOptions(e.Options, opts...)
	count, err := e.Count(ctx, option.Collection)
	if err != nil || count == 0 {
		return nil, err
	}
	topK := option.TopK
	if topK <= 0 || topK > count {
		topK = count
	}
	topK = min(topK, maxTopK)
	if err := e.db.LoadCollection(ctx, option.Collection, false); err != nil {
		return nil, err
	}
	params, err := entity.NewIndexHNSWSearchParam(max(topK, 64))
	if err != nil {
		return nil, err
	}
	results, err := e.db.Search(ctx, option.Collection, nil, filterExpr(&option),
		[]string{fieldID, fieldContent, fieldMeta, fieldEmbedding},
		[]entity.Vector{entity.FloatVector(vectordb.Float32s(vectors))},
		fieldEmbedding, entity.COSINE, topK, params)
	if err != nil {
		return nil, err
	}
	var records []vectordb.Record
	for _, result := range results {
		if result.Err != nil {
			return nil, result.Err
		}
		for i := 0; i < result.ResultCount; i++ {
			var rec vectordb.Record
			if err := resultToRecord(&result, i, &rec); err != nil {
				return nil, err
			}
			if rec.Score < option.MinScore {
				continue
			}
			records = append(records, rec)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	return records, nil
}

// filterExpr translates the metadata and content filters into a boolean expression
func filterExpr(opts *vectordb.SearchOptions) string {
	var clauses []string
	keys := make([]string, 0, len(opts.Meta))
	for k := range opts.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		clauses = append(clauses, fmt.Sprintf("%s[%s] == %s", fieldMeta, strconv.Quote(k), strconv.Quote(opts.Meta[k])))
	}
	if opts.Include != "" {
		clauses = append(clauses, fmt.Sprintf("%s like %s", fieldContent, strconv.Quote("%"+opts.Include+"%")))
	}
	if opts.Exclude != "" {
		clauses = append(clauses, fmt.Sprintf("not (%s like %s)", fieldContent, strconv.Quote("%"+opts.Exclude+"%")))
	}
	return strings.Join(clauses, " and ")
}

func resultToRecord(result *client.SearchResult, i int, record *vectordb.Record) error {
	if i < len(result.Scores) {
		record.Score = float64(result.Scores[i])
	}
	var err error
	if col := result.Fields.GetColumn(fieldID); col != nil {
		if record.ID, err = col.GetAsString(i); err != nil {
			return err
		}
	}
	if col := result.Fields.GetColumn(fieldContent); col != nil {
		if record.Embedding.Object, err = col.GetAsString(i); err != nil {
			return err
		}
	}
	if col := result.Fields.GetColumn(fieldEmbedding); col != nil {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		if vector, ok := v.([]float32); ok {
			record.Embedding.Embedding = vectordb.Float64s(vector)
		}
	}
	if col := result.Fields.GetColumn(fieldMeta); col != nil {
		v, err := col.Get(i)
		if err != nil {
			return err
		}
		if bs, ok := v.([]byte); ok && len(bs) > 0 {
			if err := json.Unmarshal(bs, &record.Embedding.Meta); err != nil {
				return err
			}
		}
	}
	return nil
}
