package parser

import "testing"

func TestCleanPrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "with currency symbol", input: "$51.77", expected: "51.77"},
		{name: "thousands separator", input: "AED 1,079.00", expected: "1,079.00"},
		{name: "first run wins", input: "$12.99 - $15.99", expected: "12.99"},
		{name: "integer", input: "  42 ", expected: "42"},
		{name: "no digits", input: "See options", expected: "0"},
		{name: "empty string", input: "", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPrice(tt.input); got != tt.expected {
				t.Errorf("CleanPrice(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanRating(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "4.5 out of 5 stars", expected: "4.5"},
		{input: "Rated 3", expected: "3"},
		{input: "no rating", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanRating(tt.input); got != tt.expected {
				t.Errorf("CleanRating(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseRatingAndCount(t *testing.T) {
	if got := ParseRating("4.2 stars"); got != 4.2 {
		t.Fatalf("ParseRating = %v, want 4.2", got)
	}
	if got := ParseRating("..."); got != 0 {
		t.Fatalf("ParseRating(...) = %v, want 0", got)
	}
	if got := ParseCount("12,345"); got != 12345 {
		t.Fatalf("ParseCount = %d, want 12345", got)
	}
	if got := ParseCount("n/a"); got != 0 {
		t.Fatalf("ParseCount(n/a) = %d, want 0", got)
	}
	if got := NormalizeInStock("Only 3 left - In Stock"); got != "true" {
		t.Fatalf("NormalizeInStock = %q", got)
	}
}
