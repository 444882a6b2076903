package rewrite

import (
	"regexp"
	"strings"
)

// AllowedG is the default G-code allow-list.
var AllowedG = map[int]bool{
	0: true, 1: true, 2: true, 3: true, 4: true,
	10: true, 11: true,
	28: true, 29: true, 30: true, 31: true,
	90: true, 91: true, 92: true,
}

// AllowedM is a representative Marlin M-code allow-list covering the
// temperature, fan, homing-status and reset commands a bed-leveling
// session needs.
var AllowedM = map[int]bool{
	17: true, 18: true, 84: true,
	104: true, 105: true, 106: true, 107: true, 109: true,
	114: true, 115: true, 140: true, 190: true,
	999: true,
}

// FilterDropError reports a line dropped by the unsupported-code filter,
// or one precision reduction could not shrink enough.
type FilterDropError struct {
	Line   string
	Reason string
}

func (e *FilterDropError) Error() string {
	return "rewrite: dropped line " + quote(e.Line) + ": " + e.Reason
}

func quote(s string) string { return "\"" + s + "\"" }

// StripComment truncates line at the first occurrence of '(', ';' or '%'.
func StripComment(line string) string {
	idx := strings.IndexAny(line, "(;%")
	if idx < 0 {
		return line
	}
	return line[:idx]
}

var letterBoundaryRE = regexp.MustCompile(`([A-Za-z])`)
var lineNumberRE = regexp.MustCompile(`^N-?\d+\s*`)

// NormalizeSpacing trims, uppercases, and inserts a space before each
// letter, so "G1X10Y20" becomes "G1 X10 Y20".
func NormalizeSpacing(line string) string {
	line = strings.TrimSpace(line)
	line = strings.ToUpper(line)
	return strings.TrimSpace(letterBoundaryRE.ReplaceAllString(line, " $1"))
}

var codeRE = regexp.MustCompile(`^\s*([GM])\s*(\d+)`)

// FilterAllowed drops N-line-numbers, then keeps the line only if its
// leading G- or M-code is in the supplied allow-lists. A line whose
// leading code is not recognized at all (no G or M) passes through
// unchanged - it isn't this filter's job to reject garbage, only codes.
func FilterAllowed(line string, allowedG, allowedM map[int]bool) (string, error) {
	line = lineNumberRE.ReplaceAllString(strings.TrimSpace(line), "")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	m := codeRE.FindStringSubmatch(line)
	if m == nil {
		return line, nil
	}

	code := atoiSafe(m[2])
	switch m[1] {
	case "G":
		if !allowedG[code] {
			return "", &FilterDropError{Line: line, Reason: "G-code not in allow-list"}
		}
	case "M":
		if !allowedM[code] {
			return "", &FilterDropError{Line: line, Reason: "M-code not in allow-list"}
		}
	}
	return line, nil
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
