package models

import (
	"fmt"
	"strings"
)

// SortKey selects the ranking strategy applied to a search.
type SortKey string

const (
	SortRelevant       SortKey = "relevant"
	SortPriceAsc       SortKey = "priceAsc"
	SortPriceDesc      SortKey = "priceDesc"
	SortRatingDesc     SortKey = "ratingDesc"
	SortPopularityDesc SortKey = "popularityDesc"
)

// DefaultCategory is used when a query does not name a category.
const DefaultCategory = "all"

var sortAliases = map[string]SortKey{
	"relevant":          SortRelevant,
	"relevance":         SortRelevant,
	"priceasc":          SortPriceAsc,
	"price_low_to_high": SortPriceAsc,
	"price-low":         SortPriceAsc,
	"pricedesc":         SortPriceDesc,
	"price_high_to_low": SortPriceDesc,
	"price-high":        SortPriceDesc,
	"ratingdesc":        SortRatingDesc,
	"highest_rating":    SortRatingDesc,
	"rating":            SortRatingDesc,
	"popularitydesc":    SortPopularityDesc,
	"most_popular":      SortPopularityDesc,
	"popular":           SortPopularityDesc,
}

// ParseSortKey maps canonical names and the legacy wire aliases onto a
// SortKey. Unknown or empty input falls back to SortRelevant.
func ParseSortKey(s string) SortKey {
	if key, ok := sortAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return key
	}
	return SortRelevant
}

// SearchQuery is built once per request and passed by value afterwards.
type SearchQuery struct {
	Text     string  `json:"searchInput"`
	Category string  `json:"category"`
	MaxPrice float64 `json:"maxPrice"`
	SortKey  SortKey `json:"sortBy"`
}

// NewSearchQuery validates the raw request values and applies defaults.
func NewSearchQuery(text, category string, maxPrice float64, sortBy string) (SearchQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SearchQuery{}, fmt.Errorf("search text cannot be empty")
	}
	if maxPrice < 0 {
		return SearchQuery{}, fmt.Errorf("max price cannot be negative")
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = DefaultCategory
	}
	return SearchQuery{
		Text:     text,
		Category: category,
		MaxPrice: maxPrice,
		SortKey:  ParseSortKey(sortBy),
	}, nil
}
