// Package grocery deterministically merges ingredient quantities across
// the recipes a compiled plan actually used. No model calls, no
// randomness: the same recipe set always yields the same list.
package grocery

import (
	"math"
	"sort"
	"strings"

	"github.com/platewise/v1/internal/domain/recipe"
)

// Item is one aggregated grocery row.
type Item struct {
	Name string  `json:"name"`
	Qty  float64 `json:"qty"`
	Unit string  `json:"unit"`
}

// VendorItem is the vendor-facing projection of an Item. Same data,
// qty renamed to quantity.
type VendorItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// unitSynonyms maps every accepted unit spelling to its canonical form.
var unitSynonyms = map[string]string{
	"tablespoon":  "tbsp",
	"tablespoons": "tbsp",
	"tbsp":        "tbsp",
	"teaspoon":    "tsp",
	"teaspoons":   "tsp",
	"tsp":         "tsp",
	"g":           "grams",
	"gram":        "grams",
	"grams":       "grams",
	"clove":       "cloves",
	"cloves":      "cloves",
	"ml":          "ml",
	"l":           "l",
	"count":       "count",
}

// nameSynonyms collapses known plural/singular variants to one spelling.
var nameSynonyms = map[string]string{
	"tortilla":  "tortillas",
	"tortillas": "tortillas",
	"eggs":      "egg",
	"egg":       "egg",
}

// nonQuantityUnits are "to taste"-style markers that never contribute a
// quantity to the list.
var nonQuantityUnits = map[string]bool{
	"to taste": true,
	"taste":    true,
}

// NormalizeName lower-cases, trims, and collapses known plural variants.
// Idempotent: NormalizeName(NormalizeName(x)) == NormalizeName(x).
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := nameSynonyms[n]; ok {
		return canonical
	}
	return n
}

// NormalizeUnit maps a unit through the synonym table. Empty or unknown
// units become "unit". Idempotent for every value it can produce.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if canonical, ok := unitSynonyms[u]; ok {
		return canonical
	}
	if u == "" {
		return "unit"
	}
	return u
}

// Aggregate merges ingredient quantities across the used recipes, keyed
// by (normalized name, normalized unit). A missing or non-numeric qty
// counts as 1.0 — a recipe uses one unit by default. Output is sorted by
// name (then unit) ascending and is independent of the order of usedIDs.
func Aggregate(usedIDs []string, byID map[string]recipe.Card) []Item {
	type key struct {
		name string
		unit string
	}
	totals := make(map[key]float64)

	for _, id := range usedIDs {
		card, ok := byID[id]
		if !ok {
			continue
		}
		for _, ing := range card.Ingredients {
			name := NormalizeName(ing.Name)
			if name == "" {
				continue
			}
			unit := NormalizeUnit(ing.Unit)
			if nonQuantityUnits[unit] {
				continue
			}

			qty := 1.0
			if ing.Qty.Valid {
				qty = ing.Qty.Value
			}
			totals[key{name, unit}] += qty
		}
	}

	items := make([]Item, 0, len(totals))
	for k, qty := range totals {
		items = append(items, Item{
			Name: k.name,
			Qty:  math.Round(qty*100) / 100,
			Unit: k.unit,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}

// VendorPayload is the 1:1 projection of an aggregated list into the
// vendor order shape.
func VendorPayload(items []Item) []VendorItem {
	out := make([]VendorItem, len(items))
	for i, item := range items {
		out[i] = VendorItem{Name: item.Name, Quantity: item.Qty, Unit: item.Unit}
	}
	return out
}
