// Package ranking filters normalized products by price and orders them.
package ranking

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-products/models"
)

// DefaultTolerance lets prices up to 10% over the ceiling through.
const DefaultTolerance = 1.1

var errNoPrice = errors.New("price has no numeric token")

// Engine filters and sorts the products of one search.
type Engine struct {
	Tolerance float64
}

// New returns an engine; tolerance <= 0 falls back to DefaultTolerance.
func New(tolerance float64) *Engine {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Engine{Tolerance: tolerance}
}

// Rank returns a new slice holding the products that pass the price filter,
// ordered by q.SortKey. The input slice is left untouched.
func (e *Engine) Rank(products []models.NormalizedProduct, q models.SearchQuery) []models.NormalizedProduct {
	filtered := e.filter(products, q.MaxPrice)
	slog.Debug("price filter applied",
		slog.Float64("max_price", q.MaxPrice),
		slog.Int("in", len(products)),
		slog.Int("kept", len(filtered)),
	)
	return sortProducts(filtered, q.SortKey)
}

func (e *Engine) filter(products []models.NormalizedProduct, maxPrice float64) []models.NormalizedProduct {
	out := make([]models.NormalizedProduct, 0, len(products))
	if maxPrice <= 0 {
		return append(out, products...)
	}
	ceiling := maxPrice * e.Tolerance
	for _, p := range products {
		price, err := parsePrice(p.Price)
		if err != nil || price <= ceiling {
			out = append(out, p)
		}
	}
	return out
}

func sortProducts(products []models.NormalizedProduct, key models.SortKey) []models.NormalizedProduct {
	switch key {
	case models.SortPriceAsc, models.SortPriceDesc:
		prices := make([]float64, len(products))
		for i, p := range products {
			price, err := sortPrice(p.Price)
			if err != nil {
				slog.Debug("price sort skipped",
					slog.String("price", p.Price),
					slog.Any("error", err),
				)
				return products
			}
			prices[i] = price
		}
		order := make([]int, len(products))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			if key == models.SortPriceDesc {
				return cmp.Compare(prices[b], prices[a])
			}
			return cmp.Compare(prices[a], prices[b])
		})
		sorted := make([]models.NormalizedProduct, len(products))
		for i, idx := range order {
			sorted[i] = products[idx]
		}
		return sorted
	case models.SortRatingDesc:
		slices.SortStableFunc(products, func(a, b models.NormalizedProduct) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case models.SortPopularityDesc:
		slices.SortStableFunc(products, func(a, b models.NormalizedProduct) int {
			return cmp.Compare(b.ReviewCount, a.ReviewCount)
		})
	default:
		slices.SortStableFunc(products, func(a, b models.NormalizedProduct) int {
			if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
				return c
			}
			return cmp.Compare(b.ReviewCount, a.ReviewCount)
		})
	}
	return products
}

// cleanPrice strips currency symbols and thousands separators and keeps the
// first whitespace separated token.
func cleanPrice(price string) string {
	price = strings.NewReplacer("$", "", ",", "").Replace(price)
	fields := strings.Fields(price)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func parsePrice(price string) (float64, error) {
	token := cleanPrice(price)
	if token == "" {
		return 0, errNoPrice
	}
	return strconv.ParseFloat(token, 64)
}

// sortPrice treats a missing price as zero; anything else must parse.
func sortPrice(price string) (float64, error) {
	token := cleanPrice(price)
	if token == "" {
		return 0, nil
	}
	return strconv.ParseFloat(token, 64)
}
