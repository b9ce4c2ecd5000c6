package catalog

import (
	"strings"

	"github.com/codyseavey/card-pricer/internal/models"
)

// DefaultNameThreshold is the minimum fuzzy score for MatchByName to
// accept a candidate.
const DefaultNameThreshold = 0.6

// Score rates the similarity of a query string against a catalog name,
// in [0,1]. Both strings are normalized first. Exact matches score
// 1.0; substring containment in either direction scores 0.9 (OCR often
// drops a leading or trailing token); everything else falls through to
// the sequence-similarity ratio.
func Score(query, candidateName string) float64 {
	a := NormalizeName(query)
	b := NormalizeName(candidateName)

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}
	return SequenceRatio(a, b)
}

// SequenceRatio computes a Ratcliff/Obershelp similarity ratio:
// 2*M / (len(a)+len(b)), where M is the total length of matching
// blocks found by recursively taking the longest matching block and
// descending into the unmatched prefix and suffix segments. The result
// is deterministic and symmetric up to floating error.
func SequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	matched := matchingTotal(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingTotal sums matching-block lengths over [alo,ahi) x [blo,bhi).
func matchingTotal(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a, b, alo, i, blo, j)
	total += matchingTotal(a, b, i+size, ahi, j+size, bhi)
	return total
}

// longestMatch finds the longest contiguous matching block within the
// given bounds. Ties resolve to the earliest block in a, then the
// earliest in b, which keeps the recursion deterministic.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}

// MatchByName scans the full catalog and returns the highest-scoring
// card at or above the threshold, or nil when nothing clears it. Equal
// top scores resolve to the first card in catalog order. An empty
// query never matches.
func (c *Catalog) MatchByName(query string, threshold float64) *models.Card {
	if NormalizeName(query) == "" {
		return nil
	}

	// Exact index hit short-circuits the scan; the scan would find the
	// same card with score 1.0.
	if card := c.LookupName(query); card != nil {
		return card
	}

	var best *models.Card
	bestScore := 0.0
	for _, card := range c.cards {
		score := Score(query, card.Name)
		if score >= threshold && score > bestScore {
			bestScore = score
			best = card
		}
	}
	return best
}
