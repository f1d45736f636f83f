package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/purecheck/agents"
	"github.com/bububa/purecheck/agents/rag"
	"github.com/bububa/purecheck/chat"
	"github.com/bububa/purecheck/components/embedder"
	"github.com/bububa/purecheck/components/embedder/providers"
	"github.com/bububa/purecheck/components/vectordb"
	"github.com/bububa/purecheck/components/vectordb/engines"
	"github.com/bububa/purecheck/components/vectordb/engines/milvus"
	"github.com/bububa/purecheck/config"
	"github.com/bububa/purecheck/extractor"
	"github.com/bububa/purecheck/pipeline"
	"github.com/bububa/purecheck/scoring"
	"github.com/bububa/purecheck/session"
	"github.com/bububa/purecheck/upload"
)

// app builds the components described by the configuration. Everything it opens is
// released by Close.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *openai.Client
	s3      *s3.Client
	closers []func() error
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	return &app{
		cfg:    cfg,
		logger: logger,
		client: agents.NewClient(agents.ClientConfig{
			APIKey:     cfg.LLM.APIKey,
			BaseURL:    cfg.LLM.BaseURL,
			APIType:    cfg.LLM.APIType,
			APIVersion: cfg.LLM.APIVersion,
			Timeout:    cfg.LLM.Timeout,
		}),
	}
}

func (a *app) Close() error {
	var errs []error
	for _, fn := range slices.Backward(a.closers) {
		errs = append(errs, fn())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) s3Client(ctx context.Context) (*s3.Client, error) {
	if a.s3 != nil {
		return a.s3, nil
	}
	clt, err := upload.NewS3Client(ctx, a.cfg.Upload.S3.Region, a.cfg.Upload.S3.Endpoint)
	if err != nil {
		return nil, err
	}
	a.s3 = clt
	return clt, nil
}

func (a *app) index(ctx context.Context) (*rag.Index, error) {
	ic := a.cfg.Index
	engine, closeEngine, err := engines.Open(ctx, engines.Config{
		Kind: vectordb.EngineType(ic.Engine),
		Path: ic.Path,
		Milvus: milvus.Config{
			Address:  ic.Milvus.Address,
			Username: ic.Milvus.Username,
			Password: ic.Milvus.Password,
			DBName:   ic.Milvus.DBName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening guideline index: %w", err)
	}
	a.closers = append(a.closers, closeEngine)
	counter, err := embedder.NewTokenCounter(ic.TokenCounter, ic.Encoding)
	if err != nil {
		return nil, err
	}
	ec := a.cfg.Embedding
	provider := ec.Provider
	if provider == "" {
		provider = a.cfg.LLM.APIType
	}
	emb, closeEmbedder, err := providers.New(ctx, providers.Config{
		Provider: provider,
		APIKey:   ec.APIKey,
		BaseURL:  ec.BaseURL,
		OpenAI:   a.client,
	}, embedder.WithModel(ec.Model), embedder.WithDimensions(ec.Dimensions))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeEmbedder)
	return rag.NewIndex(
		rag.WithEmbedder(emb),
		rag.WithVectorDB(engine),
		rag.WithCollection(ic.Collection),
		rag.WithBatchSize(a.cfg.Embedding.BatchSize),
		rag.WithChunker(embedder.NewTextChunker(
			embedder.WithChunkSize(ic.ChunkSize),
			embedder.WithChunkOverlap(ic.ChunkOverlap),
			embedder.WithTokenCounter(counter),
		)),
		rag.WithLogger(a.logger),
	)
}

func (a *app) reasoner() (scoring.Reasoner, error) {
	rc := a.cfg.Reasoner
	if rc.Engine == "rules" {
		return scoring.NewRuleScorer(rc.Formulas, a.cfg.Policy)
	}
	opts := []agents.Option{
		agents.WithClient(a.client),
		agents.WithModel(rc.Model),
		agents.WithTemperature(rc.Temperature),
		agents.WithTimeout(rc.Timeout),
		agents.WithLogger(a.logger),
		agents.WithMode(agents.TextMode),
	}
	if rc.MaxTokens > 0 {
		opts = append(opts, agents.WithMaxTokens(rc.MaxTokens))
	}
	if rc.Structured {
		opts = append(opts, agents.WithInstructor(agents.NewInstructor(a.client)), agents.WithMode(agents.StructuredMode))
	}
	return scoring.NewLLMReasoner(scoring.NewAgent(opts...), a.cfg.Policy), nil
}

func (a *app) analyzer() (*pipeline.Analyzer, error) {
	baseline, err := a.cfg.NutritionBaseline()
	if err != nil {
		return nil, err
	}
	reasoner, err := a.reasoner()
	if err != nil {
		return nil, err
	}
	ec := a.cfg.Extractor
	agent := extractor.NewAgent(a.client, ec.Model, ec.Timeout, a.logger,
		agents.WithTemperature(ec.Temperature),
		agents.WithMaxTokens(ec.MaxTokens))
	ext := extractor.New(agent, extractor.WithLogger(a.logger))
	return pipeline.New(ext, reasoner, baseline, pipeline.WithLogger(a.logger)), nil
}

func (a *app) chat(retriever rag.Retriever) *chat.Service {
	cc := a.cfg.Chat
	opts := []agents.Option{
		agents.WithClient(a.client),
		agents.WithModel(cc.Model),
		agents.WithTemperature(cc.Temperature),
		agents.WithTimeout(cc.Timeout),
		agents.WithLogger(a.logger),
	}
	if cc.MaxTokens > 0 {
		opts = append(opts, agents.WithMaxTokens(cc.MaxTokens))
	}
	return chat.New(chat.NewAgent(opts...), retriever, chat.WithTopK(cc.TopK), chat.WithLogger(a.logger))
}

func (a *app) sessions() (session.Store, error) {
	sc := a.cfg.Session
	var store session.Store
	if sc.Store == "sqlite" {
		s, err := session.NewSQLiteStore(sc.Path, sc.TTL)
		if err != nil {
			return nil, err
		}
		store = s
	} else {
		store = session.NewMemoryStore(sc.TTL)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// purgeSessions drops expired sessions every interval until ctx is done
func (a *app) purgeSessions(ctx context.Context, store session.Store, interval time.Duration) {
	p, ok := store.(interface {
		Purge(context.Context) (int, error)
	})
	if !ok {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Purge(ctx)
			if err != nil {
				a.logger.WarnContext(ctx, "purging sessions", slog.Any("error", err))
			} else if n > 0 {
				a.logger.DebugContext(ctx, "expired sessions purged", slog.Int("count", n))
			}
		}
	}
}

func (a *app) validator() *upload.Validator {
	uc := a.cfg.Upload
	return &upload.Validator{
		Allowed:         uc.Allowed,
		MaxBytes:        uc.MaxBytes,
		SniffContent:    uc.SniffContent,
		SingleExtension: uc.SingleExtension,
	}
}

func (a *app) imageStore(ctx context.Context) (upload.Store, error) {
	uc := a.cfg.Upload
	if uc.Storage != "s3" {
		return upload.NewLocalStore(uc.Dir)
	}
	clt, err := a.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	return upload.NewS3Store(clt, uc.S3.Bucket,
		upload.WithS3Prefix(uc.S3.Prefix),
		upload.WithPublicURL(uc.S3.PublicURL)), nil
}
