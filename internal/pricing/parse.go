package pricing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// UngradedLabel groups raw cards whose listing carries no grading info.
const UngradedLabel = "Ungraded"

// gradePatterns are tried in order. Grading-company labels come first
// because a graded listing usually repeats the condition word too
// ("PSA 10 GEM MINT"). Multi-word conditions precede their substrings
// so "Near Mint" is not swallowed by "Mint".
var gradePatterns = []struct {
	re     *regexp.Regexp
	format func(m []string) string
}{
	{regexp.MustCompile(`(?i)PSA\s*(\d+(?:\.\d+)?)`), func(m []string) string { return "PSA " + m[1] }},
	{regexp.MustCompile(`(?i)BGS\s*(\d+(?:\.\d+)?)`), func(m []string) string { return "BGS " + m[1] }},
	{regexp.MustCompile(`(?i)CGC\s*(\d+(?:\.\d+)?)`), func(m []string) string { return "CGC " + m[1] }},
	{regexp.MustCompile(`(?i)SGC\s*(\d+)`), func(m []string) string { return "SGC " + m[1] }},
	{regexp.MustCompile(`(?i)Near\s*Mint`), func([]string) string { return "Near Mint" }},
	{regexp.MustCompile(`(?i)Mint`), func([]string) string { return "Mint" }},
	{regexp.MustCompile(`(?i)Light(?:ly)?\s*Played`), func([]string) string { return "Lightly Played" }},
	{regexp.MustCompile(`(?i)Moderate(?:ly)?\s*Played`), func([]string) string { return "Moderately Played" }},
	{regexp.MustCompile(`(?i)Heav(?:il)?y\s*Played`), func([]string) string { return "Heavily Played" }},
	{regexp.MustCompile(`(?i)Damaged`), func([]string) string { return "Damaged" }},
}

// ExtractGrade pulls a canonical grade label out of a listing title.
// Text with no recognizable grading info is Ungraded.
func ExtractGrade(text string) string {
	if strings.TrimSpace(text) == "" {
		return UngradedLabel
	}
	for _, p := range gradePatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			return p.format(m)
		}
	}
	return UngradedLabel
}

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// ParsePrice extracts a numeric price from marketplace price text like
// "$1,234.56" or "£12.99". Range prices ("$10.00 to $15.00") and junk
// fail rather than guessing.
func ParsePrice(text string) (float64, error) {
	cleaned := nonPriceChars.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in price text %q", text)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", text, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("non-positive price %q", text)
	}
	return v, nil
}
