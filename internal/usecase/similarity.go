package usecase

import (
	"math"
	"strings"
)

// Ratio scores full-string similarity between a and b on a 0-100 scale.
// Comparison is case-insensitive; empty input scores 0. The score is a
// normalized edit distance where substitutions cost 2, so transposed or
// slightly misspelled names still score high. Symmetric: Ratio(a,b) ==
// Ratio(b,a).
func Ratio(a, b string) int {
	ra := normalizeRunes(a)
	rb := normalizeRunes(b)
	return ratioRunes(ra, rb)
}

// PartialRatio scores the best alignment of the shorter string against
// any same-length window of the longer one. Used for comparing single
// tokens of a compound dish name against a full product name.
func PartialRatio(a, b string) int {
	ra := normalizeRunes(a)
	rb := normalizeRunes(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	needle, hay := ra, rb
	if len(needle) > len(hay) {
		needle, hay = hay, needle
	}

	best := 0
	for i := 0; i+len(needle) <= len(hay); i++ {
		score := ratioRunes(needle, hay[i:i+len(needle)])
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// normalizeRunes lowercases and trims a string and returns its runes so
// multibyte menu text (accents, CJK) is scored per character, not per byte.
func normalizeRunes(s string) []rune {
	return []rune(strings.ToLower(strings.TrimSpace(s)))
}

func ratioRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	total := len(a) + len(b)
	dist := weightedEditDistance(a, b)
	return int(math.Round(float64(total-dist) / float64(total) * 100))
}

// weightedEditDistance computes edit distance with substitution cost 2,
// equivalent to counting unmatched characters across both strings.
// Uses two rows instead of a full matrix for space efficiency.
func weightedEditDistance(a, b []rune) int {
	m := len(a)
	n := len(b)

	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 2
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
