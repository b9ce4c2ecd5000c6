// Package matcher turns partial, possibly-contradictory OCR evidence
// into a ranked list of catalog candidates. It is a rule-based fusion
// procedure: every rule, boost, and tie-break is fixed so results are
// reproducible and testable.
package matcher

import (
	"sort"
	"strings"

	"github.com/codyseavey/card-pricer/internal/catalog"
	"github.com/codyseavey/card-pricer/internal/models"
)

const (
	// setNumberConfidence is assigned to an exact set-number hit. The
	// set number printed on a card pins down the exact record, so this
	// evidence short-circuits everything else.
	setNumberConfidence = 0.95

	// nameBaseConfidence is the starting confidence for any candidate
	// produced by name evidence, before boosts.
	nameBaseConfidence = 0.6

	hpBoost         = 0.25
	cardNumberBoost = 0.2

	// boostCeiling caps boosted confidence below the set-number tier:
	// however much soft evidence agrees, it never outranks an exact
	// set-number hit.
	boostCeiling = 0.95

	// hpComboFloor is the minimum name-similarity ratio for the HP
	// cross-reference pass to produce a candidate.
	hpComboFloor = 0.5
)

type Matcher struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Matcher {
	return &Matcher{catalog: c}
}

// MatchCard produces ranked candidates for the extracted fields. It
// never fails: missing evidence skips rules, and no usable evidence
// yields an empty slice (a no-match, not an error).
//
// Rules run in reliability order:
//  1. exact set-number lookup — authoritative, returns immediately
//  2. name evidence — fuzzy best match plus containment scan
//  3. boosts on rule-2 candidates from HP and card-number agreement
//  4. HP cross-reference against the name for corroborating candidates
//
// Candidates are deduplicated per card keeping the highest-confidence
// entry, then stable-sorted by confidence descending, so discovery
// order (name pass before HP pass) breaks ties.
func (m *Matcher) MatchCard(fields models.ExtractedFields) []models.MatchCandidate {
	if fields.SetNumber != nil {
		if card := m.catalog.LookupSetNumber(*fields.SetNumber); card != nil {
			return []models.MatchCandidate{{
				Card:       card,
				Confidence: setNumberConfidence,
				Reasons:    []string{models.ReasonExactSetNumber},
			}}
		}
	}

	var candidates []models.MatchCandidate

	if fields.Name != nil {
		candidates = append(candidates, m.nameCandidates(fields)...)
	}

	if fields.Name != nil && fields.HP != nil {
		candidates = append(candidates, m.hpCrossReference(*fields.Name, *fields.HP)...)
	}

	if len(candidates) == 0 {
		return nil
	}

	candidates = dedupeByCard(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	return candidates
}

// nameCandidates generates rule-2 candidates: every card whose
// normalized name contains (or is contained by) the query, plus the
// best fuzzy match in case OCR noise defeats the substring scan. Each
// candidate starts at the base confidence and is boosted by whatever
// secondary evidence agrees with it.
func (m *Matcher) nameCandidates(fields models.ExtractedFields) []models.MatchCandidate {
	name := *fields.Name

	fuzzyBest := m.catalog.MatchByName(name, catalog.DefaultNameThreshold)

	contained := m.catalog.ContainmentMatches(name)
	inContained := make(map[*models.Card]bool, len(contained))
	for _, card := range contained {
		inContained[card] = true
	}

	matched := contained
	if fuzzyBest != nil && !inContained[fuzzyBest] {
		matched = append(matched, fuzzyBest)
	}

	candidates := make([]models.MatchCandidate, 0, len(matched))
	for _, card := range matched {
		confidence := nameBaseConfidence
		reasons := []string{models.ReasonName}

		if fields.HP != nil && card.HP != nil && *fields.HP == *card.HP {
			confidence += hpBoost
			reasons = append(reasons, models.ReasonHP)
		}

		// Only the numerator is compared: OCR frequently drops the
		// total-in-set, and the same card number across a reprint is
		// still corroborating evidence.
		if fields.SetNumber != nil && card.SetNumber != "" {
			if cardNumber(*fields.SetNumber) == cardNumber(card.SetNumber) {
				confidence += cardNumberBoost
				reasons = append(reasons, models.ReasonCardNumber)
			}
		}

		if confidence > boostCeiling {
			confidence = boostCeiling
		}

		candidates = append(candidates, models.MatchCandidate{
			Card:       card,
			Confidence: confidence,
			Reasons:    reasons,
		})
	}
	return candidates
}

// hpCrossReference walks every card sharing the extracted HP and
// scores its name against the extracted name with the bare sequence
// ratio (no exact/containment shortcuts). Ratios above the floor
// produce candidates in (0.8, 0.9].
func (m *Matcher) hpCrossReference(name string, hp int) []models.MatchCandidate {
	var candidates []models.MatchCandidate
	for _, card := range m.catalog.LookupHP(hp) {
		ratio := catalog.SequenceRatio(strings.ToLower(name), strings.ToLower(card.Name))
		if ratio <= hpComboFloor {
			continue
		}
		candidates = append(candidates, models.MatchCandidate{
			Card:       card,
			Confidence: 0.7 + ratio*0.2,
			Reasons:    []string{models.ReasonHPNameCombo},
		})
	}
	return candidates
}

// cardNumber returns the numerator of a "<card_no>/<total>" label,
// compared as a string ("04" and "4" are distinct, as printed).
func cardNumber(setNumber string) string {
	norm := catalog.NormalizeSetNumber(setNumber)
	if i := strings.Index(norm, "/"); i >= 0 {
		return norm[:i]
	}
	return norm
}

// dedupeByCard keeps one candidate per card: the highest-confidence
// entry, first-discovered winning ties. Discovery order among the
// survivors is preserved for the stable sort.
func dedupeByCard(candidates []models.MatchCandidate) []models.MatchCandidate {
	best := make(map[*models.Card]int, len(candidates))
	out := candidates[:0]
	for _, cand := range candidates {
		if i, ok := best[cand.Card]; ok {
			if cand.Confidence > out[i].Confidence {
				out[i] = cand
			}
			continue
		}
		best[cand.Card] = len(out)
		out = append(out, cand)
	}
	return out
}
