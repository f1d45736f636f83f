// Package jsonx recovers JSON documents from free-form model output.
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNoJSON is returned when the text does not contain a JSON object
var ErrNoJSON = errors.New("no JSON object found")

// StripFences removes a surrounding markdown code fence such as ```json ... ```
func StripFences(text string) string {
	txt := strings.TrimSpace(text)
	if !strings.HasPrefix(txt, "```") {
		return txt
	}
	txt = strings.TrimPrefix(txt, "```")
	if idx := strings.IndexByte(txt, '\n'); idx >= 0 {
		// drop the language tag
		txt = txt[idx+1:]
	} else {
		txt = strings.TrimPrefix(txt, "json")
	}
	txt = strings.TrimSpace(txt)
	txt = strings.TrimSuffix(txt, "```")
	return strings.TrimSpace(txt)
}

// Extract returns the first balanced JSON object in text. Reasoning models often wrap the
// object in prose or fences. When the object is never closed the remainder of the text is
// returned so that Repair can attempt to complete it.
func Extract(text string) (string, error) {
	txt := StripFences(text)
	start := strings.IndexByte(txt, '{')
	if start < 0 {
		return "", ErrNoJSON
	}
	var (
		depth    int
		inString bool
		escaped  bool
	)
	for i := start; i < len(txt); i++ {
		c := txt[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return txt[start : i+1], nil
			}
		}
	}
	return strings.TrimSuffix(strings.TrimSpace(txt[start:]), "```"), nil
}

// Repair returns text unchanged when it is valid JSON, otherwise the jsonrepair result
func Repair(text string) (string, error) {
	if json.Valid([]byte(text)) {
		return text, nil
	}
	return jsonrepair.JSONRepair(text)
}

// Decode extracts, repairs and unmarshals the first JSON object of text into v
func Decode(text string, v any) error {
	raw, err := Extract(text)
	if err != nil {
		return err
	}
	fixed, err := Repair(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(fixed), v)
}
