package nutrition

import (
	"fmt"
	"math"
	"strings"
)

// Grade is the INR letter grade
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
)

// GradeFor maps a score in [0,100] to its grade.
// A:[80,100], B:[60,80), C:[40,60), D:[20,40), E:[0,20)
func GradeFor(score float64) Grade {
	switch {
	case score >= 80:
		return GradeA
	case score >= 60:
		return GradeB
	case score >= 40:
		return GradeC
	case score >= 20:
		return GradeD
	default:
		return GradeE
	}
}

// ParseGrade parses a grade letter, accepting surrounding whitespace and lower case
func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(s)))
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeE:
		return g, nil
	}
	return "", fmt.Errorf("invalid grade %q", s)
}

// ClampScore bounds v to [0,100]
func ClampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// ValidScore reports whether v is a finite score in [0,100]
func ValidScore(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 100
}
