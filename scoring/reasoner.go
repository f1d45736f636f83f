// Package scoring turns a nutrient analysis into an INR score, grade, warnings and claims.
// Engines produce a raw Response which Normalize validates and repairs.
package scoring

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/nutrition"
)

// Input is everything an engine scores
type Input struct {
	Product  *nutrition.Product
	Analysis nutrition.Analysis
	Baseline *nutrition.Baseline
}

// Reasoner scores a product. Implementations return errors classified by errdefs.
type Reasoner interface {
	Score(ctx context.Context, in Input) (*nutrition.ScoreResult, error)
}

func (in Input) validate(op string) error {
	if in.Analysis == nil {
		return errdefs.Validation(op, "missing nutrient analysis")
	}
	if in.Baseline == nil {
		return errdefs.Validation(op, "missing baseline")
	}
	return nil
}

// Retrying retries a reasoning failure exactly once. Timeouts are not retried.
type Retrying struct {
	reasoner Reasoner
	logger   *slog.Logger
}

var _ Reasoner = (*Retrying)(nil)

func WithRetry(r Reasoner, logger *slog.Logger) *Retrying {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{reasoner: r, logger: logger}
}

func (r *Retrying) Score(ctx context.Context, in Input) (*nutrition.ScoreResult, error) {
	res, err := r.reasoner.Score(ctx, in)
	if !retryable(err) {
		return res, err
	}
	r.logger.WarnContext(ctx, "scoring failed, retrying once", slog.Any("error", err))
	res, err = r.reasoner.Score(ctx, in)
	if retryable(err) {
		return nil, errdefs.ScoringUnavailable("scoring.Score", err)
	}
	return res, err
}

func retryable(err error) bool {
	return err != nil && errors.Is(err, errdefs.ErrReasoning) && !errors.Is(err, errdefs.ErrExternalTimeout)
}
