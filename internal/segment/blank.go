package segment

import (
	"strings"
	"unicode"
)

// blankTextThreshold is the character count below which a page with no
// substantial alphanumeric runs is treated as blank
const blankTextThreshold = 10

// blankIndicators are phrases that mark intentionally empty pages
var blankIndicators = []string{
	"this page intentionally left blank",
	"blank page",
	"[blank]",
}

// IsBlank reports whether extracted page text represents a blank or
// near-blank page: too few meaningful characters and no digit or letter
// run of length three or more. Computed once at ingest.
func IsBlank(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range blankIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	if len(compact) >= blankTextThreshold {
		return false
	}
	return longestAlnumRun(compact) < 3
}

// MarkBlanks computes the blank flag for each page text, in page order
func MarkBlanks(pages []string) []bool {
	flags := make([]bool, len(pages))
	for i, text := range pages {
		flags[i] = IsBlank(text)
	}
	return flags
}

// longestAlnumRun returns the length of the longest consecutive run of
// letters or digits in s
func longestAlnumRun(s string) int {
	best, run := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}
