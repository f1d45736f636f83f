package nutrition

import (
	"fmt"
	"math"
)

// Baseline is the immutable table of daily reference values used as scoring denominators.
type Baseline struct {
	targets map[Nutrient]float64
}

// NewBaseline validates targets and returns a Baseline. Every tracked nutrient must be
// present with a finite, non-negative target. The input map is copied.
func NewBaseline(targets map[Nutrient]float64) (*Baseline, error) {
	cp := make(map[Nutrient]float64, len(Nutrients))
	for k, v := range targets {
		if !k.Valid() {
			return nil, fmt.Errorf("baseline: unknown nutrient %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("baseline: invalid target %v for %s", v, k)
		}
		cp[k] = v
	}
	for _, n := range Nutrients {
		if _, ok := cp[n]; !ok {
			return nil, fmt.Errorf("baseline: missing target for %s", n)
		}
	}
	return &Baseline{targets: cp}, nil
}

// DefaultTargets returns the FSSAI INR reference values for a 2000 kcal diet
func DefaultTargets() map[Nutrient]float64 {
	return map[Nutrient]float64{
		EnergyKcal:     2000,
		TotalFatG:      65,
		SaturatedFatG:  20,
		CarbohydratesG: 300,
		SugarsG:        50,
		AddedSugarsG:   30,
		ProteinG:       50,
		SodiumMg:       2000,
		FiberG:         25,
	}
}

// DefaultBaseline returns the FSSAI INR baseline
func DefaultBaseline() *Baseline {
	b, err := NewBaseline(DefaultTargets())
	if err != nil {
		panic(err)
	}
	return b
}

// Get returns the daily target of n
func (b *Baseline) Get(n Nutrient) (float64, bool) {
	v, ok := b.targets[n]
	return v, ok
}

// Targets returns a copy of the table
func (b *Baseline) Targets() map[Nutrient]float64 {
	cp := make(map[Nutrient]float64, len(b.targets))
	for k, v := range b.targets {
		cp[k] = v
	}
	return cp
}
