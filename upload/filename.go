package upload

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// StampLayout prefixes stored file names
const StampLayout = "20060102_150405"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces name to a safe base name: ASCII letters, digits, '_', '.' and '-'.
// Path separators become underscores and leading dots are removed. It may return "".
func SecureFilename(name string) string {
	var sb strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < unicode.MaxASCII {
			sb.WriteRune(r)
		}
	}
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(sb.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// StoredName returns the timestamped name an upload is stored under
func StoredName(name string, now time.Time) string {
	safe := SecureFilename(name)
	if safe == "" {
		safe = "upload"
	}
	return now.Format(StampLayout) + "_" + safe
}
