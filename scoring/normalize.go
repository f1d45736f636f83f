package scoring

import (
	"fmt"
	"strings"

	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/schema"
)

// Response is the raw answer of a scoring engine
type Response struct {
	schema.Base
	NegativePoints *nutrition.NegativePoints `json:"negative_points,omitempty"`
	PositivePoints *nutrition.PositivePoints `json:"positive_points,omitempty"`
	Score          *float64                  `json:"inr_score" validate:"required"`
	Grade          string                    `json:"grade"`
	Interpretation string                    `json:"interpretation,omitempty"`
	HealthWarnings []string                  `json:"health_warnings,omitempty"`
	PositiveClaims []string                  `json:"positive_claims,omitempty"`
}

// Normalize validates an engine response against the analysis it was computed from.
// The score must be a finite number in [0,100]. The grade is recomputed when missing or
// inconsistent with the score. Warnings and claims start with the policy derived nutrient keys,
// followed by the engine's own entries the policy supports, without duplicates. An engine entry
// naming an unknown nutrient, a nutrient below the threshold or one the list does not cover is
// dropped.
func Normalize(resp *Response, analysis nutrition.Analysis, policy nutrition.Policy, engine string) (*nutrition.ScoreResult, error) {
	const op = "scoring.Normalize"
	if resp == nil || resp.Score == nil {
		return nil, errdefs.Reasoning(op, "missing inr_score", nil)
	}
	score := *resp.Score
	if !nutrition.ValidScore(score) {
		return nil, errdefs.Reasoning(op, fmt.Sprintf("inr_score %v outside [0,100]", score), nil)
	}
	want := nutrition.GradeFor(score)
	grade, err := nutrition.ParseGrade(resp.Grade)
	ret := &nutrition.ScoreResult{
		Score:          score,
		Grade:          want,
		Warnings:       merge(policy.Warnings(analysis), resp.HealthWarnings, analysis, policy.SupportsWarning),
		PositiveClaims: merge(policy.Claims(analysis), resp.PositiveClaims, analysis, policy.SupportsClaim),
		Interpretation: strings.TrimSpace(resp.Interpretation),
		NegativePoints: resp.NegativePoints,
		PositivePoints: resp.PositivePoints,
		GradeAdjusted:  err != nil || grade != want,
		Engine:         engine,
	}
	if ret.Interpretation == "" {
		ret.Interpretation = Interpretation(want)
	}
	return ret, nil
}

func merge(keys []string, extra []string, analysis nutrition.Analysis, supported func(string, nutrition.Analysis) bool) []string {
	ret := make([]string, 0, len(keys)+len(extra))
	seen := make(map[string]struct{}, len(keys)+len(extra))
	add := func(s string) {
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		ret = append(ret, s)
	}
	for _, k := range keys {
		add(k)
	}
	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" || !supported(s, analysis) {
			continue
		}
		add(s)
	}
	return ret
}

// Interpretation is the default reading of a grade
func Interpretation(g nutrition.Grade) string {
	switch g {
	case nutrition.GradeA:
		return "Excellent nutritional profile."
	case nutrition.GradeB:
		return "Good nutritional profile."
	case nutrition.GradeC:
		return "Moderate nutritional profile, consume in moderation."
	case nutrition.GradeD:
		return "Poor nutritional profile, limit consumption."
	default:
		return "Very poor nutritional profile, avoid frequent consumption."
	}
}
