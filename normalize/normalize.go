// Package normalize maps raw marketplace records onto NormalizedProduct.
package normalize

import (
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
)

// Standardize converts records scraped from sourceName. Empty records are
// skipped; every other record yields exactly one product.
func Standardize(records []models.RawRecord, sourceName string) []models.NormalizedProduct {
	source := models.ParseSource(sourceName)
	products := make([]models.NormalizedProduct, 0, len(records))
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		var product models.NormalizedProduct
		switch source {
		case models.SourceAmazon:
			product = amazon(record)
		case models.SourceAlibaba:
			product = alibaba(record)
		default:
			product = generic(record, source, sourceName)
		}
		products = append(products, product)
	}
	return products
}

func generic(record models.RawRecord, source models.Source, sourceName string) models.NormalizedProduct {
	label := source.DisplayName()
	if source == models.SourceUnknown && strings.TrimSpace(sourceName) != "" {
		label = sourceName
	}
	return models.NormalizedProduct{
		Title:       title(record),
		Price:       valueOr(record, models.FieldPrice, models.PlaceholderPrice),
		Rating:      parser.ParseRating(record[models.FieldRating]),
		ReviewCount: 0,
		Source:      label,
		URL:         models.PlaceholderLink,
		Image:       models.PlaceholderLink,
	}
}

func amazon(record models.RawRecord) models.NormalizedProduct {
	return models.NormalizedProduct{
		Title:       title(record),
		Price:       "$" + valueOr(record, models.FieldPrice, models.PlaceholderPrice),
		Rating:      parser.ParseRating(record[models.FieldRating]),
		ReviewCount: parser.ParseCount(record[models.FieldReviewCount]),
		Source:      models.SourceAmazon.DisplayName(),
		URL:         valueOr(record, models.FieldLink, models.PlaceholderLink),
		Image:       valueOr(record, models.FieldImage, models.PlaceholderLink),
	}
}

// alibaba quotes price ranges such as "10-20"; only the lower bound is kept.
func alibaba(record models.RawRecord) models.NormalizedProduct {
	price := valueOr(record, models.FieldPrice, models.PlaceholderPrice)
	if lower, _, found := strings.Cut(price, "-"); found {
		price = strings.TrimSpace(lower)
	}

	moq := 1
	if n, err := strconv.Atoi(strings.TrimSpace(record[models.FieldMOQ])); err == nil && n > 0 {
		moq = n
	}

	return models.NormalizedProduct{
		Title:       title(record),
		Price:       "$" + price,
		Rating:      parser.ParseRating(record[models.FieldRating]),
		ReviewCount: 0,
		Source:      models.SourceAlibaba.DisplayName(),
		URL:         models.PlaceholderLink,
		Image:       models.PlaceholderLink,
		MOQ:         &moq,
	}
}

func title(record models.RawRecord) string {
	return valueOr(record, models.FieldTitle, models.UnknownTitle)
}

func valueOr(record models.RawRecord, field models.Field, fallback string) string {
	if value := strings.TrimSpace(record[field]); value != "" {
		return value
	}
	return fallback
}
