package report

import (
	"strings"
	"unicode"
)

// CompareText orders two cell values the way the summary grids sort them:
// case-insensitive, with embedded digit runs compared numerically so that
// "Unit 2" sorts before "Unit 10". Nil-ish values (empty strings) sort first.
func CompareText(a, b string) int {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))

	i, j := 0, 0
	for i < len(la) && j < len(lb) {
		ca := rune(la[i])
		cb := rune(lb[j])

		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			// Consume full digit runs and compare as numbers
			si := i
			for i < len(la) && unicode.IsDigit(rune(la[i])) {
				i++
			}
			sj := j
			for j < len(lb) && unicode.IsDigit(rune(lb[j])) {
				j++
			}
			na := strings.TrimLeft(la[si:i], "0")
			nb := strings.TrimLeft(lb[sj:j], "0")
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
			continue
		}

		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}

	switch {
	case i < len(la):
		return 1
	case j < len(lb):
		return -1
	}
	return 0
}

// CompareNumeric orders two optional numbers; nil ranks after any value so
// unspecified cells sink to the bottom of ascending sorts.
func CompareNumeric(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
