// Package sources holds one adapter per marketplace.
package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
	"github.com/aluiziolira/go-scrape-products/scraper"
)

// Fetcher retrieves a page body; ok is false once retries are exhausted.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, bool)
}

// Source is a marketplace adapter.
type Source interface {
	scraper.Adapter
	BuildQueryURL(q models.SearchQuery) string
	SelectorConfig() parser.SelectorConfig
}

// New builds the adapters named in cfg.Sources, in order.
func New(cfg *config.Config, fetcher Fetcher, extractor *parser.Extractor) ([]Source, error) {
	out := make([]Source, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch source := models.ParseSource(name); source {
		case models.SourceAmazon:
			amazon, err := NewAmazon(cfg.AmazonBaseURL, fetcher, extractor)
			if err != nil {
				return nil, err
			}
			out = append(out, amazon)
		case models.SourceAlibaba:
			out = append(out, NewAlibaba())
		case models.SourceAliExpress:
			out = append(out, NewAliExpress())
		case models.SourceWalmart:
			out = append(out, NewWalmart())
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	return out, nil
}

// Adapters narrows sources to what the orchestrator needs.
func Adapters(srcs []Source) []scraper.Adapter {
	out := make([]scraper.Adapter, len(srcs))
	for i, s := range srcs {
		out[i] = s
	}
	return out
}

// searchURL describes how a marketplace encodes a query in its search URL.
// Unmapped categories use defaultCategory; unmapped sort keys omit the sort
// parameter.
type searchURL struct {
	base            string
	textParam       string
	categoryParam   string
	defaultCategory string
	sortParam       string
	categories      map[string]string
	sorts           map[models.SortKey]string
}

func (s searchURL) build(q models.SearchQuery) string {
	var b strings.Builder
	b.WriteString(s.base)
	b.WriteString("?")
	b.WriteString(s.textParam)
	b.WriteString("=")
	b.WriteString(url.QueryEscape(q.Text))

	if s.categoryParam != "" {
		category, ok := s.categories[q.Category]
		if !ok {
			category = s.defaultCategory
		}
		if category != "" {
			fmt.Fprintf(&b, "&%s=%s", s.categoryParam, url.QueryEscape(category))
		}
	}
	if s.sortParam != "" {
		if sort, ok := s.sorts[q.SortKey]; ok {
			fmt.Fprintf(&b, "&%s=%s", s.sortParam, url.QueryEscape(sort))
		}
	}
	return b.String()
}
