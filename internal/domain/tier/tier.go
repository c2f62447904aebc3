// Package tier holds the immutable price-tier catalog: labels, colors,
// icons, popular models, marketing copy and the quick-start presets.
package tier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Count is the number of price tiers the classifier predicts.
const Count = 4

// Tier indexes as produced by the classifier.
const (
	Budget = iota
	MidRange
	Premium
	Luxury
)

// Model is a popular phone shown for a tier.
type Model struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"-"`
	Image string          `json:"image"`
}

// PriceLabel renders the price in the catalog's "$1,199" form.
func (m Model) PriceLabel() string { return FormatUSD(m.Price) }

// Strategy is the marketing recommendation for a tier.
type Strategy struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// Tier is one catalog entry.
type Tier struct {
	Index    int
	Label    string
	Slug     string
	Color    string
	Icon     string
	Models   []Model
	Strategy Strategy
}

// TypicalPrice is the mean catalog price of the tier's popular models.
func (t Tier) TypicalPrice() decimal.Decimal {
	if len(t.Models) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, m := range t.Models {
		sum = sum.Add(m.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(t.Models)))).Round(2)
}

// Valid reports whether i is a known tier index.
func Valid(i int) bool { return i >= 0 && i < Count }

// Label maps a class index to its tier label. Unknown indexes yield "".
func Label(i int) string {
	if !Valid(i) {
		return ""
	}
	return catalog[i].Label
}

// Get returns the tier at index i.
func Get(i int) (Tier, error) {
	if !Valid(i) {
		return Tier{}, fmt.Errorf("%w: %d", ErrUnknownTier, i)
	}
	return clone(catalog[i]), nil
}

// All returns every tier in index order.
func All() []Tier {
	out := make([]Tier, Count)
	for i := range catalog {
		out[i] = clone(catalog[i])
	}
	return out
}

// Parse resolves a tier by index ("0".."3"), slug or label, case-insensitively.
func Parse(id string) (Tier, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if n, err := strconv.Atoi(id); err == nil {
		return Get(n)
	}
	for i := range catalog {
		if catalog[i].Slug == id || strings.ToLower(catalog[i].Label) == id {
			return clone(catalog[i]), nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %q", ErrUnknownTier, id)
}

func clone(t Tier) Tier {
	t.Models = append([]Model(nil), t.Models...)
	t.Strategy.Points = append([]string(nil), t.Strategy.Points...)
	return t
}
