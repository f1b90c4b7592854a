// Package match implements the case-insensitive wildcard matching used to
// resolve loosely typed choices such as "volt*" or "4*".
package match

import "unicode"

// Wildcard matches zero or more characters.
const Wildcard = '*'

// Match reports whether text matches pattern, ignoring case. A '*' in the
// pattern matches any run of characters, including the empty one.
//
// The matcher walks a single row of the classic two-pointer table, so it is
// linear in memory and O(len(pattern)*len(text)) in time for any input.
func Match(pattern, text string) bool {
	p := fold(pattern)
	t := fold(text)

	// row[j] reports whether p[:i] matches t[:j] for the current i.
	row := make([]bool, len(t)+1)
	row[0] = true
	for i := 1; i <= len(p); i++ {
		prevDiag := row[0]
		row[0] = row[0] && p[i-1] == Wildcard
		for j := 1; j <= len(t); j++ {
			above := row[j]
			if p[i-1] == Wildcard {
				// Consume the wildcard, or let it swallow one more rune.
				row[j] = above || row[j-1]
			} else {
				row[j] = prevDiag && p[i-1] == t[j-1]
			}
			prevDiag = above
		}
	}
	return row[len(t)]
}

// Includes reports whether any candidate pattern matches value. A nil value
// is never included.
func Includes(value *string, candidates ...string) bool {
	if value == nil {
		return false
	}
	return Any(*value, candidates...)
}

// Any reports whether text matches at least one of the patterns.
func Any(text string, patterns ...string) bool {
	for _, p := range patterns {
		if Match(p, text) {
			return true
		}
	}
	return false
}

func fold(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToUpper(r))
	}
	return out
}
