package nutrition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NotAvailable is the JSON text of an unknown amount
const NotAvailable = "Not Available"

var (
	unknownWords = map[string]struct{}{
		"":              {},
		"-":             {},
		"n/a":           {},
		"na":            {},
		"nil":           {},
		"none":          {},
		"null":          {},
		"unknown":       {},
		"not available": {},
		"not mentioned": {},
		"not present":   {},
		"not visible":   {},
	}
	// an optional "<" bound, the number, then an optional unit
	amountPattern = regexp.MustCompile(`^<?\s*([0-9]*[.,]?[0-9]+)\s*([a-zµμ%]+)?$`)
	// units maps a unit to what it measures and its size in the base unit, grams or kcal
	units = map[string]struct {
		dim   string
		scale float64
	}{
		"g":    {"mass", 1},
		"gm":   {"mass", 1},
		"mg":   {"mass", 1e-3},
		"mcg":  {"mass", 1e-6},
		"ug":   {"mass", 1e-6},
		"µg":   {"mass", 1e-6},
		"μg":   {"mass", 1e-6},
		"kcal": {"energy", 1},
		"kj":   {"energy", 1 / 4.184},
	}
)

// Amount is a per-100g quantity that is either a known non-negative number or explicitly unknown.
// The zero value is unknown.
type Amount struct {
	value float64
	known bool
}

// Known returns a known amount. Negative and non-finite values are not valid amounts,
// use ParseAmount for untrusted input.
func Known(v float64) Amount {
	return Amount{value: v, known: true}
}

// Unknown returns an unknown amount
func Unknown() Amount {
	return Amount{}
}

// Value returns the amount and whether it is known
func (a Amount) Value() (float64, bool) {
	return a.value, a.known
}

// IsKnown reports whether the amount was reported
func (a Amount) IsKnown() bool {
	return a.known
}

func (a Amount) String() string {
	if !a.known {
		return NotAvailable
	}
	return strconv.FormatFloat(a.value, 'f', -1, 64)
}

// MarshalJSON encodes known amounts as numbers and unknown ones as "Not Available"
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.known {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON accepts numbers, unitless numeric strings, null and the usual
// "not available" spellings. Use Nutrient.ParseAmount or a Label for text carrying a unit.
func (a *Amount) UnmarshalJSON(bs []byte) error {
	v, err := decodeAmount(bs, "")
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// decodeAmount decodes a JSON amount expressed in unit. Strings may carry their own unit,
// which is converted to unit.
func decodeAmount(bs []byte, unit string) (Amount, error) {
	bs = bytes.TrimSpace(bs)
	if len(bs) == 0 || bytes.Equal(bs, []byte("null")) {
		return Unknown(), nil
	}
	if bs[0] == '"' {
		var s string
		if err := json.Unmarshal(bs, &s); err != nil {
			return Unknown(), err
		}
		return ParseAmountIn(s, unit)
	}
	var f float64
	if err := json.Unmarshal(bs, &f); err != nil {
		return Unknown(), fmt.Errorf("invalid amount %s: %w", string(bs), err)
	}
	return checkAmount(f)
}

// ParseAmount parses unitless label text such as "12", "<0.5", "1,5" or "N/A".
// Text with a unit is rejected, its magnitude is unknown without a target unit.
func ParseAmount(s string) (Amount, error) {
	return ParseAmountIn(s, "")
}

// ParseAmountIn parses label text such as "12.5 g", "<0.5g" or "1883 kJ" and converts it to
// unit. Text without a unit is taken to be in unit already. Percentages and units measuring
// something else than unit are rejected.
func ParseAmountIn(s string, unit string) (Amount, error) {
	txt := strings.ToLower(strings.TrimSpace(s))
	if _, ok := unknownWords[txt]; ok {
		return Unknown(), nil
	}
	m := amountPattern.FindStringSubmatch(txt)
	if m == nil {
		return Unknown(), fmt.Errorf("invalid amount %q", s)
	}
	f, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return Unknown(), fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if m[2] != "" && m[2] != unit {
		if f, err = convertUnit(f, m[2], unit); err != nil {
			return Unknown(), fmt.Errorf("invalid amount %q: %w", s, err)
		}
	}
	return checkAmount(f)
}

func convertUnit(v float64, from string, to string) (float64, error) {
	src, ok := units[from]
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", from)
	}
	if to == "" {
		return 0, fmt.Errorf("unit %q given without a target unit", from)
	}
	dst, ok := units[to]
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", to)
	}
	if src.dim != dst.dim {
		return 0, fmt.Errorf("%s is not convertible to %s", from, to)
	}
	return math.Round(v*src.scale/dst.scale*1e6) / 1e6, nil
}

// unitOf returns the unit suffix of a key such as "calcium_mg", or "" when it has none
func unitOf(key string) string {
	idx := strings.LastIndexByte(key, '_')
	if idx < 0 {
		return ""
	}
	if _, ok := units[key[idx+1:]]; ok {
		return key[idx+1:]
	}
	return ""
}

func checkAmount(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Unknown(), fmt.Errorf("invalid amount %v", f)
	}
	if f < 0 {
		return Unknown(), fmt.Errorf("negative amount %v", f)
	}
	return Known(f), nil
}
