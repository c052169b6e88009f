// Package models defines data structures shared by the search engine.
package models

// Field names one logical value extracted from a listing.
type Field string

const (
	FieldTitle         Field = "title"
	FieldPrice         Field = "price"
	FieldRating        Field = "rating"
	FieldLink          Field = "link"
	FieldImage         Field = "image"
	FieldDescription   Field = "description"
	FieldShipping      Field = "shipping"
	FieldInStock       Field = "in_stock"
	FieldVendor        Field = "vendor"
	FieldReviewCount   Field = "review_count"
	FieldCategory      Field = "category"
	FieldOriginalPrice Field = "original_price"
	FieldMOQ           Field = "moq"
)

// RawRecord holds the text extracted from one listing element. Any field may
// be missing.
type RawRecord map[Field]string

// ScrapeResult is the outcome of one adapter invocation.
type ScrapeResult struct {
	Source  string      `json:"source"`
	Records []RawRecord `json:"products"`
	Query   SearchQuery `json:"search_params"`
	Error   string      `json:"error,omitempty"`
}

// Failed reports whether the adapter tagged the result with an error.
func (r ScrapeResult) Failed() bool {
	return r.Error != ""
}

const (
	UnknownTitle     = "Unknown Product"
	PlaceholderLink  = "#"
	PlaceholderPrice = "0"
)

// NormalizedProduct is the canonical product shape returned to callers.
type NormalizedProduct struct {
	Title       string  `json:"title"`
	Price       string  `json:"price"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Source      string  `json:"source"`
	URL         string  `json:"url"`
	Image       string  `json:"image"`
	MOQ         *int    `json:"moq,omitempty"`
}

// SearchDump is the debug artifact written after a search.
type SearchDump struct {
	Query       SearchQuery         `json:"query"`
	Results     []ScrapeResult      `json:"results"`
	Products    []NormalizedProduct `json:"products"`
	GeneratedAt string              `json:"generated_at"`
}
