package vision

import (
	"regexp"
	"strings"
)

// maxParsedNames caps how many dish names the fallback parser returns.
const maxParsedNames = 20

// Package-level compiled regex patterns for plain-text parsing
var (
	// Leading numbering like "1." or "12)"
	numberingPattern = regexp.MustCompile(`^\d+[.)]\s*`)

	// Currency amounts like "$12.99"
	pricePattern = regexp.MustCompile(`\$[\d.,]+`)

	// Bare decimal numbers like "15.50"
	decimalPattern = regexp.MustCompile(`\d+\.\d+`)

	// Lines that are only digits, whitespace, and price punctuation
	noiseLinePattern = regexp.MustCompile(`^[\d\s$.,\-]+$`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// ParseDishNames extracts dish names from raw menu text, one per line.
// It strips numbering, prices, and noise lines, and deduplicates
// case-insensitively while preserving first-seen order. Used as a
// fallback when only plain OCR text is available rather than the model's
// structured output.
func ParseDishNames(text string) []string {
	names := make([]string, 0)
	if strings.TrimSpace(text) == "" {
		return names
	}

	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = numberingPattern.ReplaceAllString(line, "")
		line = pricePattern.ReplaceAllString(line, "")
		line = decimalPattern.ReplaceAllString(line, "")
		line = multiSpacePattern.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)

		if len(line) < 3 || noiseLinePattern.MatchString(line) {
			continue
		}

		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true

		names = append(names, line)
		if len(names) == maxParsedNames {
			break
		}
	}

	return names
}
