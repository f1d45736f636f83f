// Package engines opens a vector engine by name
package engines

import (
	"context"
	"fmt"

	"github.com/bububa/purecheck/components/vectordb"
	"github.com/bububa/purecheck/components/vectordb/engines/chromem"
	"github.com/bububa/purecheck/components/vectordb/engines/memory"
	"github.com/bububa/purecheck/components/vectordb/engines/milvus"
)

// Config selects the engine and where it keeps its data
type Config struct {
	Kind vectordb.EngineType
	// Path is the chromem persistence directory, empty keeps the index in memory
	Path   string
	Milvus milvus.Config
}

// Open returns the engine of cfg. The returned close func releases its connection and is never nil.
func Open(ctx context.Context, cfg Config, opts ...vectordb.Option) (vectordb.Engine, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Kind {
	case vectordb.Memory:
		return memory.New(opts...), noop, nil
	case vectordb.Chromem, "":
		engine, err := chromem.Open(cfg.Path, opts...)
		if err != nil {
			return nil, nil, err
		}
		return engine, noop, nil
	case vectordb.Milvus:
		engine, err := milvus.Open(ctx, cfg.Milvus, opts...)
		if err != nil {
			return nil, nil, err
		}
		return engine, engine.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown vector engine %q", cfg.Kind)
}
