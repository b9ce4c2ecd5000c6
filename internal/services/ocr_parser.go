package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/codyseavey/card-pricer/internal/models"
)

// Weights for extraction confidence. A raw OCR dump with all three of
// name, HP, and set number present scores 1.0.
const (
	nameWeight      = 0.4
	hpWeight        = 0.3
	setNumberWeight = 0.3
)

var (
	cardNumberPattern = regexp.MustCompile(`(?:^|\s)(\d{1,3})\s*/\s*(\d{1,3})(?:\s|$|[^0-9])`)

	// Explicit HP patterns are most reliable. The "4P" variant is a
	// recurring OCR misread of "HP".
	hpPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)HP[ ]*(\d{2,3})`),
		regexp.MustCompile(`(?i)(\d{2,3})[ ]*HP`),
		regexp.MustCompile(`(?i)4P[ ]*(\d{2,3})`),
	}

	trailingHPPattern = regexp.MustCompile(`(?i)\s*(?:HP\s*\d{2,3}|\d{2,3}\s*HP)\s*$`)
	nonNamePattern    = regexp.MustCompile(`[^a-zA-Z0-9\s'.-]`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
	letterRunPattern  = regexp.MustCompile(`[a-zA-Z]{3,}`)
)

// ParseCardText extracts structured card fields from a raw OCR dump.
// Missing fields stay nil; the returned confidence reflects how many
// of the three identifying fields were found.
func ParseCardText(text string) (models.ExtractedFields, float64) {
	var fields models.ExtractedFields

	if name := extractName(text); name != "" {
		fields.Name = &name
	}
	if hp, ok := extractHP(text); ok {
		fields.HP = &hp
	}
	if num := extractSetNumber(text); num != "" {
		fields.SetNumber = &num
	}

	confidence := 0.0
	if fields.Name != nil {
		confidence += nameWeight
	}
	if fields.HP != nil {
		confidence += hpWeight
	}
	if fields.SetNumber != nil {
		confidence += setNumberWeight
	}
	return fields, confidence
}

// extractName takes the first line that looks like a card name: at
// least one run of three letters, not a pure number/fraction line.
// Trailing HP text and stray symbols are stripped.
func extractName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !letterRunPattern.MatchString(line) {
			continue
		}
		if name := cleanName(line); name != "" {
			return name
		}
	}
	return ""
}

func cleanName(line string) string {
	name := trailingHPPattern.ReplaceAllString(line, "")
	name = nonNamePattern.ReplaceAllString(name, "")
	name = multiSpacePattern.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if !letterRunPattern.MatchString(name) {
		return ""
	}
	return name
}

// extractHP scans the explicit HP patterns, counting every candidate
// in the plausible 10..400 range. OCR repeats the HP value in several
// regions, so the most frequent candidate wins, highest value on tie.
func extractHP(text string) (int, bool) {
	normalized := normalizeDigits(text)

	counts := make(map[int]int)
	for _, re := range hpPatterns {
		for _, m := range re.FindAllStringSubmatch(normalized, -1) {
			v, err := strconv.Atoi(m[1])
			if err != nil || v < 10 || v > 400 {
				continue
			}
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return 0, false
	}

	best, bestCount := 0, 0
	for v, count := range counts {
		if count > bestCount || (count == bestCount && v > best) {
			best = v
			bestCount = count
		}
	}
	return best, true
}

func extractSetNumber(text string) string {
	m := cardNumberPattern.FindStringSubmatch(normalizeDigits(text))
	if m == nil {
		return ""
	}
	return m[1] + "/" + m[2]
}

// normalizeDigits replaces common OCR letter-for-digit misreads so the
// numeric patterns can fire. Only applied to numeric extraction, never
// to the name.
func normalizeDigits(s string) string {
	r := strings.NewReplacer("O", "0", "o", "0", "l", "1", "I", "1")
	return r.Replace(s)
}
