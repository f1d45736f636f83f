package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/schema"
	"github.com/bububa/purecheck/scoring"
)

type fakeExtractor struct {
	product *nutrition.Product
	err     error
}

func (f *fakeExtractor) Extract(context.Context, schema.Image) (*nutrition.Product, error) {
	return f.product, f.err
}

type flakyReasoner struct {
	calls int
	fails int
	next  scoring.Reasoner
}

func (r *flakyReasoner) Score(ctx context.Context, in scoring.Input) (*nutrition.ScoreResult, error) {
	r.calls++
	if r.calls <= r.fails {
		return nil, errdefs.Reasoning("test", "bad score", nil)
	}
	return r.next.Score(ctx, in)
}

func product(values map[nutrition.Nutrient]float64) *nutrition.Product {
	p := &nutrition.Product{Name: "Lemon Drink", Type: "Liquid"}
	p.Nutrition.Record = nutrition.NewRecord(values)
	return p
}

func rules(t *testing.T) scoring.Reasoner {
	r, err := scoring.NewRuleScorer(scoring.DefaultFormulas(), nutrition.DefaultPolicy())
	require.NoError(t, err)
	return r
}

func TestAnalyze(t *testing.T) {
	ext := &fakeExtractor{product: product(map[nutrition.Nutrient]float64{
		nutrition.SugarsG:  25,
		nutrition.SodiumMg: 20,
	})}
	a := New(ext, rules(t), nutrition.DefaultBaseline())
	res, err := a.Analyze(context.Background(), schema.Image{Data: []byte{1}})
	require.NoError(t, err)

	pct, ok := res.Analysis.Percent(nutrition.SugarsG)
	require.True(t, ok)
	assert.InDelta(t, 50.0, pct, 1e-9)
	assert.Equal(t, []string{"sugars_g"}, res.Score.Warnings)
	_, ok = res.Analysis.Percent(nutrition.ProteinG)
	assert.False(t, ok)
	assert.Empty(t, res.Score.PositiveClaims)
	assert.Equal(t, "Lemon Drink", res.Product.Name)
}

func TestAnalyzeRetry(t *testing.T) {
	ext := &fakeExtractor{product: product(map[nutrition.Nutrient]float64{nutrition.ProteinG: 20})}

	r := &flakyReasoner{fails: 1, next: rules(t)}
	res, err := New(ext, r, nutrition.DefaultBaseline()).Analyze(context.Background(), schema.Image{Data: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls)
	assert.Equal(t, []string{"protein_g"}, res.Score.PositiveClaims)

	r = &flakyReasoner{fails: 2, next: rules(t)}
	_, err = New(ext, r, nutrition.DefaultBaseline()).Analyze(context.Background(), schema.Image{Data: []byte{1}})
	assert.ErrorIs(t, err, errdefs.ErrScoringUnavailable)
	assert.Equal(t, 2, r.calls)
	assert.Equal(t, 502, errdefs.HTTPStatus(err))
}

func TestAnalyzeExtractionErrors(t *testing.T) {
	r := &flakyReasoner{next: rules(t)}
	ext := &fakeExtractor{err: errdefs.Extraction("test", "not a label", nil)}
	_, err := New(ext, r, nutrition.DefaultBaseline()).Analyze(context.Background(), schema.Image{Data: []byte{1}})
	assert.ErrorIs(t, err, errdefs.ErrExtraction)

	ext = &fakeExtractor{product: product(nil)}
	_, err = New(ext, r, nutrition.DefaultBaseline()).Analyze(context.Background(), schema.Image{Data: []byte{1}})
	assert.ErrorIs(t, err, errdefs.ErrExtraction)
	assert.Zero(t, r.calls, "scoring never runs without nutrients")
}
