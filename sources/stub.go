package sources

import (
	"context"
	"log/slog"

	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
)

// Stub is a marketplace whose scraping is not implemented yet. Scrape
// returns an empty result without an error, which is distinct from a fetch
// failure.
type Stub struct {
	source models.Source
	query  searchURL
}

// NewAlibaba returns the Alibaba placeholder.
func NewAlibaba() *Stub {
	return &Stub{
		source: models.SourceAlibaba,
		query: searchURL{
			base:      "https://www.alibaba.com/trade/search",
			textParam: "SearchText",
		},
	}
}

// NewAliExpress returns the AliExpress placeholder.
func NewAliExpress() *Stub {
	return &Stub{
		source: models.SourceAliExpress,
		query: searchURL{
			base:      "https://www.aliexpress.com/wholesale",
			textParam: "SearchText",
			sortParam: "SortType",
			sorts: map[models.SortKey]string{
				models.SortPriceAsc:       "price_asc",
				models.SortPriceDesc:      "price_desc",
				models.SortPopularityDesc: "total_tranpro_desc",
			},
		},
	}
}

// NewWalmart returns the Walmart placeholder.
func NewWalmart() *Stub {
	return &Stub{
		source: models.SourceWalmart,
		query: searchURL{
			base:      "https://www.walmart.com/search",
			textParam: "q",
			sortParam: "sort",
			sorts: map[models.SortKey]string{
				models.SortPriceAsc:       "price_low",
				models.SortPriceDesc:      "price_high",
				models.SortRatingDesc:     "rating_high",
				models.SortPopularityDesc: "best_seller",
			},
		},
	}
}

func (s *Stub) Name() string { return s.source.String() }

func (s *Stub) BuildQueryURL(q models.SearchQuery) string {
	return s.query.build(q)
}

// SelectorConfig is empty until the marketplace is implemented.
func (s *Stub) SelectorConfig() parser.SelectorConfig {
	return parser.SelectorConfig{}
}

func (s *Stub) Scrape(_ context.Context, q models.SearchQuery) (models.ScrapeResult, error) {
	slog.Info("source not implemented", slog.String("source", s.Name()))
	return models.ScrapeResult{
		Source:  s.Name(),
		Records: []models.RawRecord{},
		Query:   q,
	}, nil
}
