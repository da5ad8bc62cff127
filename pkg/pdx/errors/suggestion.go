package errors

import (
	"fmt"
	"strings"
)

// SuggestKey returns "Did you mean 'x'?" for the known key closest to
// unknown, ignoring case. It returns "" when no key is within maxDistance
// edits or the closest key is unknown itself.
func SuggestKey(unknown string, validKeys []string, maxDistance int) string {
	needle := strings.ToLower(unknown)
	best, bestDist := "", maxDistance+1
	for _, key := range validKeys {
		if d := editDistance(needle, strings.ToLower(key)); d < bestDist {
			best, bestDist = key, d
		}
	}
	if best == "" || best == unknown {
		return ""
	}
	return fmt.Sprintf("Did you mean '%s'?", best)
}

// SuggestClosingBrace describes how to close open unterminated blocks.
func SuggestClosingBrace(open int) string {
	if open == 1 {
		return "Add the missing '}'"
	}
	return fmt.Sprintf("Add the %d missing '}'", open)
}

// editDistance is the Levenshtein distance between a and b in runes,
// computed with two rolling rows.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			sub := prev[j-1]
			if ra[i-1] != rb[j-1] {
				sub++
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
