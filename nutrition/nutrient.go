// Package nutrition holds the nutrient reference data and the pure scoring arithmetic:
// the daily baseline, per-100g records, the percent-of-baseline analysis, the grade
// thresholds and the warning/claim policy. Nothing in this package performs I/O.
package nutrition

import (
	"fmt"
	"strings"
)

// Nutrient is the key of a tracked nutrient
type Nutrient string

const (
	EnergyKcal     Nutrient = "energy_kcal"
	TotalFatG      Nutrient = "total_fat_g"
	SaturatedFatG  Nutrient = "saturated_fat_g"
	CarbohydratesG Nutrient = "carbohydrates_g"
	SugarsG        Nutrient = "sugars_g"
	AddedSugarsG   Nutrient = "added_sugars_g"
	ProteinG       Nutrient = "protein_g"
	SodiumMg       Nutrient = "sodium_mg"
	FiberG         Nutrient = "fiber_g"
)

// Nutrients lists every tracked nutrient in canonical order.
// Prompts, analyses and warnings are always emitted in this order.
var Nutrients = []Nutrient{
	EnergyKcal,
	TotalFatG,
	SaturatedFatG,
	CarbohydratesG,
	SugarsG,
	AddedSugarsG,
	ProteinG,
	SodiumMg,
	FiberG,
}

var nutrientInfo = map[Nutrient]struct {
	label   string
	unit    string
	aliases []string
}{
	EnergyKcal:     {"Energy", "kcal", []string{"energy", "calorie"}},
	TotalFatG:      {"Total Fat", "g", []string{"total fat"}},
	SaturatedFatG:  {"Saturated Fat", "g", []string{"saturated fat", "sat fat"}},
	CarbohydratesG: {"Carbohydrates", "g", []string{"carbohydrate", "carbs"}},
	SugarsG:        {"Sugars", "g", []string{"sugar"}},
	AddedSugarsG:   {"Added Sugars", "g", []string{"added sugar"}},
	ProteinG:       {"Protein", "g", []string{"protein"}},
	SodiumMg:       {"Sodium", "mg", []string{"sodium", "salt"}},
	FiberG:         {"Fiber", "g", []string{"fiber", "fibre"}},
}

// Valid reports whether n is a tracked nutrient
func (n Nutrient) Valid() bool {
	_, ok := nutrientInfo[n]
	return ok
}

// Label returns the human readable name, e.g. "Saturated Fat"
func (n Nutrient) Label() string {
	if info, ok := nutrientInfo[n]; ok {
		return info.label
	}
	return string(n)
}

// Unit returns the unit the per-100g value is expressed in
func (n Nutrient) Unit() string {
	return nutrientInfo[n].unit
}

// ParseAmount parses label text for n, converting a stated unit such as "0.4 g" of sodium
// into the unit of n
func (n Nutrient) ParseAmount(s string) (Amount, error) {
	return ParseAmountIn(s, n.Unit())
}

func (n Nutrient) String() string {
	return string(n)
}

// ParseNutrient parses a nutrient key, case-insensitively
func ParseNutrient(s string) (Nutrient, error) {
	n := Nutrient(strings.ToLower(strings.TrimSpace(s)))
	if !n.Valid() {
		return "", fmt.Errorf("unknown nutrient %q", s)
	}
	return n, nil
}

// mentionedIn reports whether free text refers to n by key or by one of its names.
func (n Nutrient) mentionedIn(text string) bool {
	lower := strings.ToLower(text)
	if n == SugarsG {
		// added sugars are a separate nutrient
		lower = strings.ReplaceAll(lower, string(AddedSugarsG), "")
		lower = strings.ReplaceAll(lower, "added sugar", "")
	}
	if strings.Contains(lower, string(n)) {
		return true
	}
	for _, alias := range nutrientInfo[n].aliases {
		if strings.Contains(lower, alias) {
			return true
		}
	}
	return false
}
