package rewrite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numberTokenRE = regexp.MustCompile(`([A-Za-z])(-?[0-9]+\.[0-9]+)`)

// ReducePrecision shaves trailing decimal digits from numeric parameters
// until line fits within budget bytes, shaving the value with the most
// decimals first and never going below one decimal place. If the line
// still exceeds budget after every value is down to one decimal, it is
// truncated and a *FilterDropError is returned alongside the truncated
// text.
func ReducePrecision(line string, budget int) (string, error) {
	if budget <= 0 || len(line) <= budget {
		return line, nil
	}

	type token struct {
		letter   string
		value    float64
		decimals int
	}

	matches := numberTokenRE.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return truncate(line, budget)
	}

	tokens := make([]token, len(matches))
	for i, m := range matches {
		letter := line[m[2]:m[3]]
		numStr := line[m[4]:m[5]]
		v, _ := strconv.ParseFloat(numStr, 64)
		dot := strings.IndexByte(numStr, '.')
		tokens[i] = token{letter: letter, value: v, decimals: len(numStr) - dot - 1}
	}

	rebuild := func() string {
		var b strings.Builder
		last := 0
		for i, m := range matches {
			b.WriteString(line[last:m[0]])
			b.WriteString(tokens[i].letter)
			b.WriteString(strconv.FormatFloat(tokens[i].value, 'f', tokens[i].decimals, 64))
			last = m[1]
		}
		b.WriteString(line[last:])
		return b.String()
	}

	for len(rebuild()) > budget {
		worst := -1
		for i, tok := range tokens {
			if tok.decimals <= 1 {
				continue
			}
			if worst == -1 || tok.decimals > tokens[worst].decimals {
				worst = i
			}
		}
		if worst == -1 {
			break
		}
		tokens[worst].decimals--
	}

	result := rebuild()
	if len(result) > budget {
		truncated, _ := truncate(result, budget)
		return truncated, &FilterDropError{Line: line, Reason: fmt.Sprintf("could not reduce below %d bytes (budget %d)", len(result), budget)}
	}
	return result, nil
}

func truncate(line string, budget int) (string, error) {
	if len(line) <= budget {
		return line, nil
	}
	return line[:budget], &FilterDropError{Line: line, Reason: fmt.Sprintf("line length %d exceeds budget %d and has no numeric parameters to shave", len(line), budget)}
}
