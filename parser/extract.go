package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/aluiziolira/go-scrape-products/models"
)

// DefaultMaxElements bounds how many listing containers are read per page.
const DefaultMaxElements = 10

// Extractor turns page content into raw records using a SelectorConfig.
type Extractor struct {
	maxElements int
}

// NewExtractor builds an extractor reading at most maxElements containers.
func NewExtractor(maxElements int) *Extractor {
	if maxElements <= 0 {
		maxElements = DefaultMaxElements
	}
	return &Extractor{maxElements: maxElements}
}

// Extract runs the container patterns in order and uses only the first one
// that matches anything. Each matched container yields a record unless none
// of the configured fields could be found in it.
func (e *Extractor) Extract(content string, cfg SelectorConfig) []models.RawRecord {
	records := []models.RawRecord{}

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		slog.Warn("parse page content", slog.Any("error", err))
		return records
	}
	doc := goquery.NewDocumentFromNode(root)

	pattern, containers := cfg.Product.firstMatch(doc.Selection, nil)
	if containers == nil {
		slog.Debug("no container selector matched",
			slog.Int("patterns", len(cfg.Product.Patterns)),
		)
		return records
	}

	matched := containers.Length()
	if matched > e.maxElements {
		containers = containers.Slice(0, e.maxElements)
	}
	slog.Debug("container selector chosen",
		slog.String("selector", pattern),
		slog.Int("matched", matched),
		slog.Int("used", containers.Length()),
	)

	containers.Each(func(_ int, el *goquery.Selection) {
		if record := extractRecord(el, cfg); len(record) > 0 {
			records = append(records, record)
		}
	})
	return records
}

func extractRecord(el *goquery.Selection, cfg SelectorConfig) models.RawRecord {
	record := models.RawRecord{}
	for _, spec := range cfg.Fields {
		var accept func(*goquery.Selection) bool
		if spec.Attr != "" {
			attr := spec.Attr
			accept = func(s *goquery.Selection) bool {
				_, ok := s.Attr(attr)
				return ok
			}
		}

		_, match := spec.firstMatch(el, accept)
		if match == nil {
			continue
		}

		first := match.First()
		if spec.Attr != "" {
			value, _ := first.Attr(spec.Attr)
			record[spec.Field] = cfg.resolve(value)
			continue
		}
		record[spec.Field] = cleanField(spec.Field, first.Text())
	}
	return record
}

func cleanField(field models.Field, text string) string {
	switch field {
	case models.FieldPrice, models.FieldOriginalPrice, models.FieldReviewCount:
		return CleanPrice(text)
	case models.FieldRating:
		return CleanRating(text)
	case models.FieldInStock:
		return NormalizeInStock(text)
	default:
		return strings.TrimSpace(text)
	}
}
