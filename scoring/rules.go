package scoring

import (
	"context"

	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/tools"
	"github.com/bububa/purecheck/tools/calculator"
)

// Formulas are the rule engine expressions. Point formulas see `percent`, the score formula
// sees `positive` and `negative` totals.
type Formulas struct {
	Negative string `json:"negative" yaml:"negative" validate:"required"`
	Positive string `json:"positive" yaml:"positive" validate:"required"`
	Score    string `json:"score" yaml:"score" validate:"required"`
}

func DefaultFormulas() Formulas {
	return Formulas{
		Negative: "clamp(percent / 10, 0, 10)",
		Positive: "clamp(percent / 4, 0, 5)",
		Score:    "clamp((positive - negative + 40) * 2, 0, 100)",
	}
}

// RuleScorer is a deterministic Reasoner. A nutrient with an undefined percent scores 0 points.
type RuleScorer struct {
	negative *calculator.Formula
	positive *calculator.Formula
	score    *calculator.Formula
	policy   nutrition.Policy
}

var _ Reasoner = (*RuleScorer)(nil)

func NewRuleScorer(f Formulas, policy nutrition.Policy) (*RuleScorer, error) {
	calc := calculator.New(tools.WithTitle("rule formulas"))
	ret := &RuleScorer{policy: policy}
	for _, v := range []struct {
		expr string
		dist **calculator.Formula
	}{
		{f.Negative, &ret.negative},
		{f.Positive, &ret.positive},
		{f.Score, &ret.score},
	} {
		formula, err := calc.Compile(v.expr)
		if err != nil {
			return nil, err
		}
		*v.dist = formula
	}
	return ret, nil
}

func (r *RuleScorer) Score(ctx context.Context, in Input) (*nutrition.ScoreResult, error) {
	const op = "scoring.RuleScorer"
	if err := in.validate(op); err != nil {
		return nil, err
	}
	var err error
	points := func(f *calculator.Formula, n nutrition.Nutrient) float64 {
		pct, ok := in.Analysis.Percent(n)
		if !ok || err != nil {
			return 0
		}
		var v float64
		v, err = f.Float(map[string]any{"percent": pct})
		return v
	}
	neg := nutrition.NegativePoints{
		Energy:       points(r.negative, nutrition.EnergyKcal),
		Sugars:       points(r.negative, nutrition.SugarsG),
		SaturatedFat: points(r.negative, nutrition.SaturatedFatG),
		Sodium:       points(r.negative, nutrition.SodiumMg),
	}
	neg.Total = neg.Energy + neg.Sugars + neg.SaturatedFat + neg.Sodium
	pos := nutrition.PositivePoints{
		Protein: points(r.positive, nutrition.ProteinG),
		Fiber:   points(r.positive, nutrition.FiberG),
	}
	pos.Total = pos.Protein + pos.Fiber
	if err != nil {
		return nil, errdefs.Reasoning(op, "points formula failed", err)
	}
	score, err := r.score.Float(map[string]any{"positive": pos.Total, "negative": neg.Total})
	if err != nil {
		return nil, errdefs.Reasoning(op, "score formula failed", err)
	}
	grade := nutrition.GradeFor(score)
	return Normalize(&Response{
		NegativePoints: &neg,
		PositivePoints: &pos,
		Score:          &score,
		Grade:          string(grade),
		Interpretation: Interpretation(grade),
	}, in.Analysis, r.policy, "rules")
}
