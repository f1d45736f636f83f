package nutrition

// NegativePoints is the per-nutrient penalty breakdown, each 0-10
type NegativePoints struct {
	Energy       float64 `json:"energy"`
	Sugars       float64 `json:"sugars"`
	SaturatedFat float64 `json:"saturated_fat"`
	Sodium       float64 `json:"sodium"`
	Total        float64 `json:"total"`
}

// PositivePoints is the per-nutrient credit breakdown, each 0-5
type PositivePoints struct {
	Protein float64 `json:"protein"`
	Fiber   float64 `json:"fiber"`
	Total   float64 `json:"total"`
}

// ScoreResult is the normalized outcome of scoring a product
type ScoreResult struct {
	Score          float64         `json:"inr_score"`
	Grade          Grade           `json:"grade"`
	Warnings       []string        `json:"health_warnings"`
	PositiveClaims []string        `json:"positive_claims"`
	Interpretation string          `json:"interpretation,omitempty"`
	NegativePoints *NegativePoints `json:"negative_points,omitempty"`
	PositivePoints *PositivePoints `json:"positive_points,omitempty"`
	// GradeAdjusted is set when the engine's grade was missing or disagreed with the score
	GradeAdjusted bool `json:"grade_adjusted"`
	// Engine names the scoring engine that produced the result
	Engine string `json:"engine,omitempty"`
}
