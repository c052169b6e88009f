package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/aluiziolira/go-scrape-products/models"
)

// FieldSpec is the uncompiled form of a SelectorSpec.
type FieldSpec struct {
	Field    models.Field
	Attr     string // defaults to href for links and src for images
	Patterns []string
}

// SelectorSpec is an ordered list of CSS patterns for one logical field.
// The first pattern that yields a match wins; later patterns are not tried.
type SelectorSpec struct {
	Field    models.Field
	Attr     string
	Patterns []string

	matchers []goquery.Matcher
}

// NewSelectorSpec compiles every pattern up front so that a malformed
// selector is reported at construction time rather than silently skipped.
func NewSelectorSpec(spec FieldSpec) (SelectorSpec, error) {
	if len(spec.Patterns) == 0 {
		return SelectorSpec{}, fmt.Errorf("selector %q has no patterns", spec.Field)
	}
	matchers := make([]goquery.Matcher, 0, len(spec.Patterns))
	for _, pattern := range spec.Patterns {
		compiled, err := cascadia.Compile(pattern)
		if err != nil {
			return SelectorSpec{}, fmt.Errorf("compile %q selector %q: %w", spec.Field, pattern, err)
		}
		matchers = append(matchers, compiled)
	}
	attr := spec.Attr
	if attr == "" {
		attr = defaultAttr(spec.Field)
	}
	return SelectorSpec{
		Field:    spec.Field,
		Attr:     attr,
		Patterns: append([]string(nil), spec.Patterns...),
		matchers: matchers,
	}, nil
}

func defaultAttr(field models.Field) string {
	switch field {
	case models.FieldLink:
		return "href"
	case models.FieldImage:
		return "src"
	default:
		return ""
	}
}

// firstMatch walks the patterns in order and returns the first non-empty
// match under root. When accept is set, only the first element of a match
// is offered to it and a rejection moves on to the next pattern.
func (s SelectorSpec) firstMatch(root *goquery.Selection, accept func(*goquery.Selection) bool) (string, *goquery.Selection) {
	for i, matcher := range s.matchers {
		found := root.FindMatcher(matcher)
		if found.Length() == 0 {
			continue
		}
		if accept != nil && !accept(found.First()) {
			continue
		}
		return s.Patterns[i], found
	}
	return "", nil
}

// SelectorConfig is the full selector set of one marketplace.
type SelectorConfig struct {
	Product SelectorSpec
	Fields  []SelectorSpec

	base *url.URL
}

// NewSelectorConfig compiles the container patterns and every field spec.
// Relative links and image sources are resolved against baseURL.
func NewSelectorConfig(baseURL string, product []string, fields []FieldSpec) (SelectorConfig, error) {
	container, err := NewSelectorSpec(FieldSpec{Field: "product", Patterns: product})
	if err != nil {
		return SelectorConfig{}, err
	}

	cfg := SelectorConfig{Product: container}
	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return SelectorConfig{}, fmt.Errorf("parse base url: %w", err)
		}
		cfg.base = base
	}

	for _, field := range fields {
		spec, err := NewSelectorSpec(field)
		if err != nil {
			return SelectorConfig{}, err
		}
		cfg.Fields = append(cfg.Fields, spec)
	}
	return cfg, nil
}

// MustSelectorConfig is NewSelectorConfig for static selector tables.
func MustSelectorConfig(baseURL string, product []string, fields []FieldSpec) SelectorConfig {
	cfg, err := NewSelectorConfig(baseURL, product, fields)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c SelectorConfig) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if c.base == nil || ref == "" {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.base.ResolveReference(parsed).String()
}
