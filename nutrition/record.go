package nutrition

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Record holds the per-100g amounts of every tracked nutrient. A missing key is unknown.
type Record map[Nutrient]Amount

// NewRecord builds a record from known values; nutrients not in values are unknown.
func NewRecord(values map[Nutrient]float64) Record {
	r := make(Record, len(values))
	for n, v := range values {
		r[n] = Known(v)
	}
	return r
}

// Get returns the amount of n, unknown when absent
func (r Record) Get(n Nutrient) Amount {
	return r[n]
}

// KnownCount returns the number of tracked nutrients with a known amount
func (r Record) KnownCount() int {
	var count int
	for _, n := range Nutrients {
		if r[n].IsKnown() {
			count++
		}
	}
	return count
}

// Unknowns returns the tracked nutrients without a known amount, in canonical order
func (r Record) Unknowns() []Nutrient {
	var ret []Nutrient
	for _, n := range Nutrients {
		if !r[n].IsKnown() {
			ret = append(ret, n)
		}
	}
	return ret
}

// Label is the nutrition panel as read from a product label, per 100g or 100ml.
// It carries the tracked Record plus the extras the label may print.
type Label struct {
	Record Record
	// EnergyKJ energy in kilojoules
	EnergyKJ Amount
	// TransFatG trans fat in grams
	TransFatG Amount
	// Other any other nutrients printed on the label, e.g. calcium_mg
	Other map[string]Amount
}

const (
	energyKJKey = "energy_kj"
	transFatKey = "trans_fat_g"
	otherKey    = "other_nutrients"
)

// MarshalJSON flattens the label into a single object
func (l Label) MarshalJSON() ([]byte, error) {
	mp := make(map[string]any, len(Nutrients)+3)
	for _, n := range Nutrients {
		mp[string(n)] = l.Record[n]
	}
	mp[energyKJKey] = l.EnergyKJ
	mp[transFatKey] = l.TransFatG
	if len(l.Other) > 0 {
		mp[otherKey] = l.Other
	}
	return json.Marshal(mp)
}

// UnmarshalJSON reads a flat nutrition object. Amounts are converted to the unit named by
// their key, so "0.4 g" of sodium_mg reads as 400. Unknown keys are collected into Other
// when their values are amounts and ignored otherwise.
func (l *Label) UnmarshalJSON(bs []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(bs, &raw); err != nil {
		return err
	}
	l.Record = make(Record, len(Nutrients))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := raw[k]
		switch k {
		case energyKJKey:
			amount, err := decodeAmount(v, "kj")
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			l.EnergyKJ = amount
		case transFatKey:
			amount, err := decodeAmount(v, "g")
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			l.TransFatG = amount
		case otherKey:
			var other map[string]json.RawMessage
			if err := json.Unmarshal(v, &other); err != nil {
				continue
			}
			for name, rawAmount := range other {
				l.addOther(name, rawAmount, false)
			}
		default:
			n, err := ParseNutrient(k)
			if err != nil {
				l.addOther(k, v, true)
				continue
			}
			amount, err := decodeAmount(v, n.Unit())
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			l.Record[n] = amount
		}
	}
	return nil
}

// addOther keeps an extra nutrient. A key without a unit suffix takes the unit stated in
// its value, e.g. "iron": "2 mg" is kept as iron_mg. Undecodable values are dropped.
func (l *Label) addOther(key string, raw json.RawMessage, knownOnly bool) {
	unit := unitOf(key)
	if unit == "" {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if m := amountPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s))); m != nil && m[2] != "" {
				if _, ok := units[m[2]]; ok {
					unit = m[2]
					key = key + "_" + unit
				}
			}
		}
	}
	amount, err := decodeAmount(raw, unit)
	if err != nil || (knownOnly && !amount.IsKnown()) {
		return
	}
	if l.Other == nil {
		l.Other = make(map[string]Amount)
	}
	l.Other[key] = amount
}
