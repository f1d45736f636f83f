// Package pipeline chains label extraction, nutrient analysis and scoring.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/extractor"
	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/schema"
	"github.com/bububa/purecheck/scoring"
)

// Result is the outcome of analyzing one label image
type Result struct {
	Product  *nutrition.Product     `json:"product_data"`
	Analysis nutrition.Analysis     `json:"analysis"`
	Score    *nutrition.ScoreResult `json:"inr_result"`
}

// Analyzer runs extract, analyze and score in sequence. It holds no per-request state.
type Analyzer struct {
	extractor extractor.Extractor
	reasoner  scoring.Reasoner
	baseline  *nutrition.Baseline
	logger    *slog.Logger
}

type Option func(*Analyzer)

func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New returns an Analyzer. reasoner failures are retried once.
func New(ext extractor.Extractor, reasoner scoring.Reasoner, baseline *nutrition.Baseline, opts ...Option) *Analyzer {
	ret := &Analyzer{
		extractor: ext,
		baseline:  baseline,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	ret.reasoner = scoring.WithRetry(reasoner, ret.logger)
	return ret
}

// Baseline returns the baseline scores are computed against
func (a *Analyzer) Baseline() *nutrition.Baseline {
	return a.baseline
}

func (a *Analyzer) Analyze(ctx context.Context, img schema.Image) (*Result, error) {
	const op = "pipeline.Analyze"
	start := time.Now()
	product, err := a.extractor.Extract(ctx, img)
	if err != nil {
		a.logger.WarnContext(ctx, "extraction failed", slog.Any("error", err))
		return nil, err
	}
	if product.Nutrition.Record.KnownCount() == 0 {
		return nil, errdefs.Extraction(op, "no nutrient values could be read", nil)
	}
	a.logger.InfoContext(ctx, "label extracted",
		slog.String("product", product.DisplayName()),
		slog.Int("known_nutrients", product.Nutrition.Record.KnownCount()),
		slog.Duration("elapsed", time.Since(start)))

	analysis := nutrition.Analyze(product.Nutrition.Record, a.baseline)

	start = time.Now()
	score, err := a.reasoner.Score(ctx, scoring.Input{
		Product:  product,
		Analysis: analysis,
		Baseline: a.baseline,
	})
	if err != nil {
		a.logger.WarnContext(ctx, "scoring failed", slog.Any("error", err))
		return nil, err
	}
	a.logger.InfoContext(ctx, "product scored",
		slog.Float64("score", score.Score),
		slog.String("grade", string(score.Grade)),
		slog.String("engine", score.Engine),
		slog.Bool("grade_adjusted", score.GradeAdjusted),
		slog.Duration("elapsed", time.Since(start)))
	return &Result{
		Product:  product,
		Analysis: analysis,
		Score:    score,
	}, nil
}
