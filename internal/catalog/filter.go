package catalog

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Filter narrows the loaded product list. A numeric search is a price
// ceiling, any other search matches title substrings case-insensitively.
type Filter struct {
	Query      string
	MaxPrice   *float64
	Categories []string
}

// ParseSearch turns a raw search box value into a Filter. The whole trimmed
// input must be a number in canonical form ("15", "9.5") to count as a price;
// "9.50" or "10 usd" are title searches.
func ParseSearch(raw string) Filter {
	q := strings.TrimSpace(raw)
	if q == "" {
		return Filter{}
	}
	if v, err := strconv.ParseFloat(q, 64); err == nil && strconv.FormatFloat(v, 'f', -1, 64) == q {
		return Filter{MaxPrice: &v}
	}
	return Filter{Query: strings.ToLower(q)}
}

// Apply returns the matching products sorted by rating, highest first.
// Products with equal ratings keep their input order.
func (f Filter) Apply(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	query := strings.ToLower(f.Query)
	for _, p := range products {
		switch {
		case f.MaxPrice != nil && *f.MaxPrice > 0:
			if p.Price > *f.MaxPrice {
				continue
			}
		case query != "":
			if !strings.Contains(strings.ToLower(p.Title), query) {
				continue
			}
		}
		if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating.Rate > out[j].Rating.Rate
	})
	return out
}

// Filtered applies f to a snapshot of the loaded list.
func (l *Loader) Filtered(f Filter) []models.Product {
	return f.Apply(l.Products())
}
