package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	priceRegex  = regexp.MustCompile(`[\d,]+\.?\d*`)
	ratingRegex = regexp.MustCompile(`[\d.]+`)
)

// CleanPrice returns the first run of digits, commas and an optional decimal
// part found in text, or "0" when there is none.
func CleanPrice(text string) string {
	if match := priceRegex.FindString(text); match != "" {
		return match
	}
	return "0"
}

// CleanRating returns the first run of digits and dots found in text, or "0".
func CleanRating(text string) string {
	if match := ratingRegex.FindString(text); match != "" {
		return match
	}
	return "0"
}

// ParseRating converts a cleaned rating such as "4.5 out of 5" to a number,
// reading only the first whitespace separated token. Unparsable input is 0.
func ParseRating(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	rating, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return rating
}

// ParseCount converts "1,234" to 1234. Unparsable input is 0.
func ParseCount(text string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if i := strings.IndexByte(cleaned, '.'); i >= 0 {
		cleaned = cleaned[:i]
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NormalizeInStock maps availability text onto "true" or "false".
func NormalizeInStock(text string) string {
	return strconv.FormatBool(strings.Contains(strings.ToLower(text), "in stock"))
}
