// Package catalog holds the read-only in-memory index of known cards.
// A Catalog is built once during startup and never mutated afterwards,
// so concurrent lookups from identification requests need no locking.
package catalog

import (
	"strings"

	"github.com/codyseavey/card-pricer/internal/models"
)

type Catalog struct {
	cards []*models.Card

	nameIndex      map[string]*models.Card   // normalized name -> card (last write wins)
	hpIndex        map[int][]*models.Card    // hp -> cards in insertion order
	setNumberIndex map[string]*models.Card   // normalized set number -> card
}

// Build constructs a Catalog from a card list. Construction is a pure,
// total function: an empty input yields a valid empty catalog and
// there is no partial-failure mode.
//
// Duplicate normalized names collide last-write-wins. Real sets
// contain reprints with identical names, so exact-name lookup is a
// convenience path, not the disambiguator; set numbers are.
func Build(cards []models.Card) *Catalog {
	c := &Catalog{
		cards:          make([]*models.Card, 0, len(cards)),
		nameIndex:      make(map[string]*models.Card),
		hpIndex:        make(map[int][]*models.Card),
		setNumberIndex: make(map[string]*models.Card),
	}

	for i := range cards {
		card := &cards[i]
		c.cards = append(c.cards, card)

		norm := NormalizeName(card.Name)
		if norm != "" {
			c.nameIndex[norm] = card
		}
		// Tight form absorbs OCR segmentation errors ("Char izard")
		if tight := strings.ReplaceAll(norm, " ", ""); tight != "" {
			c.nameIndex[tight] = card
		}

		if card.HP != nil && *card.HP > 0 {
			c.hpIndex[*card.HP] = append(c.hpIndex[*card.HP], card)
		}

		if num := NormalizeSetNumber(card.SetNumber); num != "" {
			c.setNumberIndex[num] = card
		}
	}

	return c
}

// NormalizeName lowercases, strips everything outside [a-z0-9 ],
// collapses repeated whitespace, and trims. Applied identically at
// index-build time and query time.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeSetNumber trims and removes internal whitespace so that
// "4 / 102" and "4/102" index identically.
func NormalizeSetNumber(num string) string {
	return strings.Join(strings.Fields(num), "")
}

// Cards returns all cards in insertion order. Callers must not mutate
// the returned cards.
func (c *Catalog) Cards() []*models.Card {
	return c.cards
}

func (c *Catalog) Len() int {
	return len(c.cards)
}

// LookupName returns the card indexed under the normalized query name,
// trying the whitespace-collapsed form first and the tight form second.
func (c *Catalog) LookupName(name string) *models.Card {
	norm := NormalizeName(name)
	if norm == "" {
		return nil
	}
	if card, ok := c.nameIndex[norm]; ok {
		return card
	}
	if card, ok := c.nameIndex[strings.ReplaceAll(norm, " ", "")]; ok {
		return card
	}
	return nil
}

// LookupHP returns all cards sharing the given HP, in catalog order.
func (c *Catalog) LookupHP(hp int) []*models.Card {
	return c.hpIndex[hp]
}

// LookupSetNumber returns the card with the given set number, or nil.
// The index is global across sets: the same "4/102" label recurring in
// a different printing resolves to whichever card was loaded last.
// This mirrors the behavior callers depend on; see DESIGN.md.
func (c *Catalog) LookupSetNumber(num string) *models.Card {
	norm := NormalizeSetNumber(num)
	if norm == "" {
		return nil
	}
	return c.setNumberIndex[norm]
}

// Search returns all cards whose name contains the query,
// case-insensitive, in catalog order.
func (c *Catalog) Search(query string) []*models.Card {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var results []*models.Card
	for _, card := range c.cards {
		if strings.Contains(strings.ToLower(card.Name), q) {
			results = append(results, card)
		}
	}
	return results
}

// ContainmentMatches returns all cards whose normalized name contains,
// or is contained by, the normalized query. A name query can
// legitimately correspond to multiple printings of the same card, so
// this returns every hit rather than a single best one.
func (c *Catalog) ContainmentMatches(query string) []*models.Card {
	q := NormalizeName(query)
	if q == "" {
		return nil
	}
	var results []*models.Card
	for _, card := range c.cards {
		name := NormalizeName(card.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, q) || strings.Contains(q, name) {
			results = append(results, card)
		}
	}
	return results
}

// SetNames returns the distinct set names present in the catalog, in
// first-seen order.
func (c *Catalog) SetNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, card := range c.cards {
		if card.SetName != "" && !seen[card.SetName] {
			seen[card.SetName] = true
			names = append(names, card.SetName)
		}
	}
	return names
}
