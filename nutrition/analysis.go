package nutrition

import (
	"encoding/json"
	"sort"
)

// NutrientAnalysis is one nutrient's share of the baseline
type NutrientAnalysis struct {
	// PerHundred value per 100g
	PerHundred Amount `json:"per_100g"`
	// Baseline daily target
	Baseline float64 `json:"inr_baseline"`
	// Percent share of the baseline, nil when undefined
	Percent *float64 `json:"percent_of_inr"`
}

// Analysis maps each baseline nutrient to its NutrientAnalysis
type Analysis map[Nutrient]NutrientAnalysis

// Analyze computes each nutrient's percent of baseline. The percent is undefined when the
// value is unknown or the baseline is zero. Analyze never fails.
func Analyze(record Record, baseline *Baseline) Analysis {
	ret := make(Analysis, len(Nutrients))
	for _, n := range Nutrients {
		target, ok := baseline.Get(n)
		if !ok {
			continue
		}
		amount := record.Get(n)
		na := NutrientAnalysis{
			PerHundred: amount,
			Baseline:   target,
		}
		if v, known := amount.Value(); known && target > 0 {
			pct := v * 100 / target
			na.Percent = &pct
		}
		ret[n] = na
	}
	return ret
}

// Percent returns the percent of baseline of n and whether it is defined
func (a Analysis) Percent(n Nutrient) (float64, bool) {
	na, ok := a[n]
	if !ok || na.Percent == nil {
		return 0, false
	}
	return *na.Percent, true
}

// MarshalJSON writes nutrients in canonical order
func (a Analysis) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(a))
	for n := range a {
		keys = append(keys, string(n))
	}
	sort.Slice(keys, func(i, j int) bool {
		return canonicalIndex(Nutrient(keys[i])) < canonicalIndex(Nutrient(keys[j]))
	})
	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(a[Nutrient(k)])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}

func canonicalIndex(n Nutrient) int {
	for i, v := range Nutrients {
		if v == n {
			return i
		}
	}
	return len(Nutrients)
}
