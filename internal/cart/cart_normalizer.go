package cart

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// The normalizer is the only gate between raw storage bytes and the rest of
// the system: whatever a client appended or an older release persisted,
// every consumer sees a well-formed list.

const defaultCurrency = "EUR"

// NormalizeItem sanitizes a single line. ok is false when the line is not
// salvageable (no identifier or no title after trimming).
func NormalizeItem(raw Item) (Item, bool) {
	it := raw

	it.ID = strings.TrimSpace(it.ID)
	it.Title = strings.TrimSpace(it.Title)
	it.Slug = strings.TrimSpace(it.Slug)
	it.Brand = strings.TrimSpace(it.Brand)
	it.CoverImage = strings.TrimSpace(it.CoverImage)

	if it.ID == "" || it.Title == "" {
		return Item{}, false
	}

	switch it.Kind {
	case KindProduct, KindService, KindPackage:
	default:
		it.Kind = KindProduct
	}

	if it.Quantity < 1 {
		it.Quantity = 1
	}

	it.Price = normalizePrice(it.Price)
	it.Currency = normalizeCurrency(it.Currency)

	return it, true
}

// NormalizeList sanitizes every entry, drops the unsalvageable ones and
// merges duplicates by ID: quantities sum, scalar fields prefer the later
// entry. Output keeps the first-seen order of surviving identifiers. The
// function is idempotent.
func NormalizeList(raw []Item) []Item {
	merged := make([]Item, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, entry := range raw {
		it, ok := NormalizeItem(entry)
		if !ok {
			continue
		}

		pos, seen := index[it.ID]
		if !seen {
			index[it.ID] = len(merged)
			merged = append(merged, it)
			continue
		}

		prev := merged[pos]
		prev.Quantity += it.Quantity
		prev.Kind = it.Kind
		prev.Title = it.Title
		prev.Currency = it.Currency
		if it.Price != nil {
			prev.Price = it.Price
		}
		if it.Slug != "" {
			prev.Slug = it.Slug
		}
		if it.Brand != "" {
			prev.Brand = it.Brand
		}
		if it.CoverImage != "" {
			prev.CoverImage = it.CoverImage
		}
		merged[pos] = prev
	}

	return merged
}

func normalizePrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	rounded := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	return &rounded
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if len(c) < 3 {
		return defaultCurrency
	}
	return c[:3]
}
