package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
	"github.com/aluiziolira/go-scrape-products/scraper"
)

var amazonCategories = map[string]string{
	"electronics": "electronics",
	"books":       "books",
	"home":        "garden",
	"clothing":    "fashion",
	"toys":        "toys-and-games",
	"sports":      "sporting",
	"beauty":      "beauty",
	"automotive":  "automotive",
	"grocery":     "grocery",
	"health":      "health-personal-care",
	"tools":       "tools",
}

var amazonSorts = map[models.SortKey]string{
	models.SortRelevant:       "relevance-rank",
	models.SortPriceAsc:       "price-asc-rank",
	models.SortPriceDesc:      "price-desc-rank",
	models.SortRatingDesc:     "review-rank",
	models.SortPopularityDesc: "popularity-rank",
}

var amazonProducts = []string{
	`div[data-component-type="s-search-result"]`,
	".s-result-item",
	".s-main-slot .s-card-container",
}

var amazonFields = []parser.FieldSpec{
	{Field: models.FieldTitle, Patterns: []string{"h2 a span", ".a-size-medium", ".a-text-normal"}},
	{Field: models.FieldDescription, Patterns: []string{".a-size-base-plus", ".a-size-base", ".a-text-normal"}},
	{Field: models.FieldPrice, Patterns: []string{".a-price-whole", ".a-offscreen", ".a-price .a-offscreen"}},
	{Field: models.FieldRating, Patterns: []string{".a-icon-alt", ".a-star-small", ".a-size-small .a-color-base"}},
	{Field: models.FieldLink, Patterns: []string{"h2 a", ".a-link-normal", ".a-text-normal"}},
	{Field: models.FieldImage, Patterns: []string{"img.s-image", ".s-image", ".a-section img"}},
	{Field: models.FieldShipping, Patterns: []string{".a-color-secondary .a-size-base", ".s-shipping-width", ".a-text-normal .a-color-secondary"}},
	{Field: models.FieldInStock, Patterns: []string{".a-color-success", ".s-stock-status", ".a-text-success"}},
	{Field: models.FieldCategory, Patterns: []string{"#searchDropdownBox", ".a-dropdown-prompt", ".s-navigation-item"}},
	{Field: models.FieldReviewCount, Patterns: []string{".s-review-count", ".a-size-base.s-underline-text", ".a-text-normal .a-size-base"}},
	{Field: models.FieldOriginalPrice, Patterns: []string{".a-text-price .a-offscreen", ".s-price .a-text-price", ".a-price .a-text-price"}},
	{Field: models.FieldVendor, Patterns: []string{".a-size-base.a-color-secondary", ".s-merchant-name", ".a-text-normal .a-color-secondary"}},
}

// Amazon scrapes the Amazon search results page.
type Amazon struct {
	query     searchURL
	fetcher   Fetcher
	extractor *parser.Extractor
	selectors parser.SelectorConfig
}

// NewAmazon builds the adapter against baseURL (normally https://www.amazon.com).
func NewAmazon(baseURL string, fetcher Fetcher, extractor *parser.Extractor) (*Amazon, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	selectors, err := parser.NewSelectorConfig(baseURL, amazonProducts, amazonFields)
	if err != nil {
		return nil, fmt.Errorf("amazon selectors: %w", err)
	}
	return &Amazon{
		query: searchURL{
			base:            baseURL + "/s",
			textParam:       "k",
			categoryParam:   "i",
			defaultCategory: "aps",
			sortParam:       "s",
			categories:      amazonCategories,
			sorts:           amazonSorts,
		},
		fetcher:   fetcher,
		extractor: extractor,
		selectors: selectors,
	}, nil
}

func (a *Amazon) Name() string { return models.SourceAmazon.String() }

// BuildQueryURL renders /s?k=<text>&i=<category>[&s=<sort>].
func (a *Amazon) BuildQueryURL(q models.SearchQuery) string {
	return a.query.build(q)
}

func (a *Amazon) SelectorConfig() parser.SelectorConfig {
	return a.selectors
}

// Scrape fetches the search page and extracts up to the extractor's cap of
// listings. An exhausted fetch is reported on the result, not as an error.
func (a *Amazon) Scrape(ctx context.Context, q models.SearchQuery) (models.ScrapeResult, error) {
	target := a.BuildQueryURL(q)
	slog.Info("scraping source",
		slog.String("source", a.Name()),
		slog.String("url", target),
	)

	result := models.ScrapeResult{
		Source:  a.Name(),
		Records: []models.RawRecord{},
		Query:   q,
	}

	body, ok := a.fetcher.Fetch(ctx, target)
	if !ok {
		result.Error = fmt.Errorf("%w for %s", scraper.ErrFetchExhausted, target).Error()
		return result, nil
	}

	result.Records = a.extractor.Extract(body, a.selectors)
	slog.Info("source scraped",
		slog.String("source", a.Name()),
		slog.Int("records", len(result.Records)),
	)
	return result, nil
}
