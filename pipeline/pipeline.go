// Package pipeline runs one product search end to end: fan-out, normalization,
// de-duplication, ranking and the optional debug dump.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/normalize"
	"github.com/aluiziolira/go-scrape-products/parser"
	"github.com/aluiziolira/go-scrape-products/ranking"
	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/aluiziolira/go-scrape-products/sources"
)

const defaultDedupeSize = 1000

// DumpWriter receives the artifact of every completed search.
type DumpWriter interface {
	Write(dump *models.SearchDump) error
	Close() error
	Validate() error
}

// Outcome is everything a search produced.
type Outcome struct {
	Products []models.NormalizedProduct
	Results  []models.ScrapeResult
	Stats    models.SearchStats
}

// Pipeline is safe for concurrent searches.
type Pipeline struct {
	orchestrator *scraper.Orchestrator
	ranker       *ranking.Engine
	metrics      *scraper.Metrics
	writer       DumpWriter
	dedupeSize   int
}

// Option customises New.
type Option func(*options)

type options struct {
	transport http.RoundTripper
	writer    DumpWriter
}

// WithTransport routes every marketplace fetch through rt.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithWriter overrides the dump writer derived from the configuration.
func WithWriter(w DumpWriter) Option {
	return func(o *options) {
		o.writer = w
	}
}

// New assembles the fetcher, extractor, sources and orchestrator described by
// cfg. metrics may be nil.
func New(cfg *config.Config, metrics *scraper.Metrics, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fetcher := scraper.NewFetcher(cfg, metrics)
	if o.transport != nil {
		fetcher.SetTransport(o.transport)
	}
	srcs, err := sources.New(cfg, fetcher, parser.NewExtractor(cfg.MaxElements))
	if err != nil {
		return nil, fmt.Errorf("build sources: %w", err)
	}

	writer := o.writer
	if writer == nil {
		writer, err = NewWriter(cfg.DumpFormat, cfg.DumpFile)
		if err != nil {
			return nil, fmt.Errorf("build dump writer: %w", err)
		}
	}

	return NewPipeline(sources.Adapters(srcs), cfg, metrics, writer), nil
}

// NewPipeline wires an already built adapter list. writer may be nil.
func NewPipeline(adapters []scraper.Adapter, cfg *config.Config, metrics *scraper.Metrics, writer DumpWriter) *Pipeline {
	size := cfg.DedupeMaxSize
	if size <= 0 {
		size = defaultDedupeSize
	}
	return &Pipeline{
		orchestrator: scraper.NewOrchestrator(adapters, cfg.SearchTimeout, metrics),
		ranker:       ranking.New(cfg.PriceTolerance),
		metrics:      metrics,
		writer:       writer,
		dedupeSize:   size,
	}
}

// Search runs q against every source. It never fails: sources that break come
// back as error-tagged results and a dump that cannot be written is logged.
func (p *Pipeline) Search(ctx context.Context, q models.SearchQuery) Outcome {
	stats := models.SearchStats{
		StartTime: time.Now(),
		Sources:   p.orchestrator.Adapters(),
	}
	slog.Info("search started",
		slog.String("query", q.Text),
		slog.String("category", q.Category),
		slog.Float64("max_price", q.MaxPrice),
		slog.String("sort", string(q.SortKey)),
	)

	results := p.orchestrator.ScrapeAll(ctx, q)

	var normalized []models.NormalizedProduct
	for _, res := range results {
		switch {
		case res.Failed():
			stats.FailedSources = append(stats.FailedSources, res.Source)
		case len(res.Records) == 0:
			stats.EmptySources = append(stats.EmptySources, res.Source)
		}
		stats.RecordCount += len(res.Records)
		normalized = append(normalized, normalize.Standardize(res.Records, res.Source)...)
	}
	stats.NormalizedCount = len(normalized)

	unique, dupes := p.dedupe(normalized)
	stats.DuplicateCount = dupes

	products := p.ranker.Rank(unique, q)
	stats.FilteredCount = len(unique) - len(products)
	stats.ReturnedCount = len(products)
	stats.EndTime = time.Now()
	p.metrics.ObserveReturned(len(products))

	slog.Info("search completed",
		slog.String("query", q.Text),
		slog.Int("sources", stats.Sources),
		slog.Int("failed_sources", len(stats.FailedSources)),
		slog.Int("records", stats.RecordCount),
		slog.Int("duplicates", stats.DuplicateCount),
		slog.Int("returned", stats.ReturnedCount),
		slog.Duration("elapsed", stats.Duration()),
	)

	p.dump(q, results, products)

	return Outcome{Products: products, Results: results, Stats: stats}
}

// ValidateDump checks that the dump file received content. It is a no-op
// when dumping is disabled.
func (p *Pipeline) ValidateDump() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Validate(); err != nil {
		return fmt.Errorf("validate dump: %w", err)
	}
	return nil
}

// Close releases the dump writer.
func (p *Pipeline) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// dedupe drops repeated (source, url) pairs within one search. Products
// without a real link are never considered duplicates. The cache is scoped to
// the search; DedupeMaxSize only caps its memory.
func (p *Pipeline) dedupe(products []models.NormalizedProduct) ([]models.NormalizedProduct, int) {
	seen, err := lru.New[string, struct{}](p.dedupeSize)
	if err != nil {
		slog.Warn("dedupe disabled", slog.Any("error", err))
		return products, 0
	}

	out := make([]models.NormalizedProduct, 0, len(products))
	dupes := 0
	for _, product := range products {
		if product.URL == "" || product.URL == models.PlaceholderLink {
			out = append(out, product)
			continue
		}
		if found, _ := seen.ContainsOrAdd(product.Source+"|"+product.URL, struct{}{}); found {
			dupes++
			continue
		}
		out = append(out, product)
	}
	return out, dupes
}

func (p *Pipeline) dump(q models.SearchQuery, results []models.ScrapeResult, products []models.NormalizedProduct) {
	if p.writer == nil {
		return
	}
	dump := &models.SearchDump{
		Query:       q,
		Results:     results,
		Products:    products,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.writer.Write(dump); err != nil {
		p.metrics.IncError("dump")
		slog.Error("write search dump", slog.Any("error", err))
	}
}
