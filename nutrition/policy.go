package nutrition

// Policy decides which nutrients are flagged as warnings or positive claims from their
// percent of baseline.
type Policy struct {
	// HighThreshold percent at or above which a limit nutrient is a warning
	HighThreshold float64 `json:"high_threshold" yaml:"high_threshold" validate:"gte=0"`
	// SourceThreshold percent at or above which a beneficial nutrient is a claim
	SourceThreshold float64 `json:"source_threshold" yaml:"source_threshold" validate:"gte=0"`
	// Limit nutrients subject to warnings
	Limit []Nutrient `json:"limit" yaml:"limit"`
	// Beneficial nutrients subject to claims
	Beneficial []Nutrient `json:"beneficial" yaml:"beneficial"`
}

// DefaultPolicy flags sugars, sodium and saturated fat at 20% and protein and fiber at 10%
func DefaultPolicy() Policy {
	return Policy{
		HighThreshold:   20,
		SourceThreshold: 10,
		Limit:           []Nutrient{SaturatedFatG, SugarsG, SodiumMg},
		Beneficial:      []Nutrient{ProteinG, FiberG},
	}
}

// Warnings returns limit nutrients at or above the high threshold, in canonical order.
// Nutrients with an undefined percent are never returned.
func (p Policy) Warnings(a Analysis) []string {
	return p.flag(a, p.Limit, p.HighThreshold)
}

// Claims returns beneficial nutrients at or above the source threshold, in canonical order.
func (p Policy) Claims(a Analysis) []string {
	return p.flag(a, p.Beneficial, p.SourceThreshold)
}

func (p Policy) flag(a Analysis, set []Nutrient, threshold float64) []string {
	ret := []string{}
	for _, n := range Nutrients {
		if !containsNutrient(set, n) {
			continue
		}
		if pct, ok := a.Percent(n); ok && pct >= threshold {
			ret = append(ret, string(n))
		}
	}
	return ret
}

// SupportsWarning reports whether free text may be listed as a warning: every nutrient it
// names must be a limit nutrient at or above the high threshold. Text naming no nutrient is
// supported.
func (p Policy) SupportsWarning(text string, a Analysis) bool {
	return p.supports(text, a, p.Limit, p.HighThreshold)
}

// SupportsClaim is SupportsWarning for positive claims and the source threshold
func (p Policy) SupportsClaim(text string, a Analysis) bool {
	return p.supports(text, a, p.Beneficial, p.SourceThreshold)
}

func (p Policy) supports(text string, a Analysis, set []Nutrient, threshold float64) bool {
	if !Mentionable(text, a) {
		return false
	}
	for _, n := range Nutrients {
		if !n.mentionedIn(text) {
			continue
		}
		if !containsNutrient(set, n) {
			return false
		}
		if pct, ok := a.Percent(n); !ok || pct < threshold {
			return false
		}
	}
	return true
}

// Mentionable reports whether text may be shown for analysis a: it must not refer to a
// nutrient whose value is unknown.
func Mentionable(text string, a Analysis) bool {
	for _, n := range Nutrients {
		na, ok := a[n]
		if ok && na.PerHundred.IsKnown() {
			continue
		}
		if n.mentionedIn(text) {
			return false
		}
	}
	return true
}

func containsNutrient(set []Nutrient, n Nutrient) bool {
	for _, v := range set {
		if v == n {
			return true
		}
	}
	return false
}
