package models

import "strings"

// Source enumerates the marketplaces the engine knows about.
type Source int

const (
	SourceUnknown Source = iota
	SourceAmazon
	SourceAliExpress
	SourceAlibaba
	SourceWalmart
)

// ParseSource resolves a wire name such as "amazon". Anything unrecognised
// maps to SourceUnknown.
func ParseSource(name string) Source {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "amazon":
		return SourceAmazon
	case "aliexpress":
		return SourceAliExpress
	case "alibaba":
		return SourceAlibaba
	case "walmart":
		return SourceWalmart
	default:
		return SourceUnknown
	}
}

// String returns the wire name used in ScrapeResult.Source.
func (s Source) String() string {
	switch s {
	case SourceAmazon:
		return "amazon"
	case SourceAliExpress:
		return "aliexpress"
	case SourceAlibaba:
		return "alibaba"
	case SourceWalmart:
		return "walmart"
	default:
		return "unknown"
	}
}

// DisplayName is the human label stored on normalized products.
func (s Source) DisplayName() string {
	switch s {
	case SourceAmazon:
		return "Amazon"
	case SourceAliExpress:
		return "AliExpress"
	case SourceAlibaba:
		return "Alibaba"
	case SourceWalmart:
		return "Walmart"
	default:
		return "Unknown"
	}
}
