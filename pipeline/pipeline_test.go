package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/scraper"
)

type fakeAdapter struct {
	name    string
	records []models.RawRecord
	err     error
	panics  bool
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Scrape(_ context.Context, q models.SearchQuery) (models.ScrapeResult, error) {
	if f.panics {
		panic("selector table corrupted")
	}
	if f.err != nil {
		return models.ScrapeResult{}, f.err
	}
	return models.ScrapeResult{Source: f.name, Records: f.records, Query: q}, nil
}

type mockWriter struct {
	mu          sync.Mutex
	dumps       []*models.SearchDump
	err         error
	validateErr error
}

func (mw *mockWriter) Write(dump *models.SearchDump) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.dumps = append(mw.dumps, dump)
	return mw.err
}

func (mw *mockWriter) Close() error    { return nil }
func (mw *mockWriter) Validate() error { return mw.validateErr }

func record(title, price, rating, reviews, link string) models.RawRecord {
	return models.RawRecord{
		models.FieldTitle:       title,
		models.FieldPrice:       price,
		models.FieldRating:      rating,
		models.FieldReviewCount: reviews,
		models.FieldLink:        link,
	}
}

func titles(products []models.NormalizedProduct) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

func TestSearchNormalizesDedupesAndRanks(t *testing.T) {
	adapters := []scraper.Adapter{
		&fakeAdapter{name: "amazon", records: []models.RawRecord{
			record("Desk lamp", "45.00", "4.1 out of 5", "300", "https://www.amazon.com/dp/A1"),
			record("Desk lamp (again)", "45.00", "4.1 out of 5", "300", "https://www.amazon.com/dp/A1"),
			record("Floor lamp", "150.00", "4.8 out of 5", "12", "https://www.amazon.com/dp/A2"),
			record("Clip lamp", "19.99", "3.9 out of 5", "2,001", "https://www.amazon.com/dp/A3"),
			{},
		}},
		&fakeAdapter{name: "walmart"},
		&fakeAdapter{name: "aliexpress", panics: true},
		&fakeAdapter{name: "alibaba", err: fmt.Errorf("blocked")},
	}
	writer := &mockWriter{}
	p := NewPipeline(adapters, config.DefaultConfig(), nil, writer)

	q, err := models.NewSearchQuery("lamp", "home", 100, "price_low_to_high")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	out := p.Search(context.Background(), q)

	if len(out.Results) != 4 {
		t.Fatalf("results=%d, want one per adapter", len(out.Results))
	}
	if got := titles(out.Products); !slices.Equal(got, []string{"Clip lamp", "Desk lamp"}) {
		t.Fatalf("products=%v", got)
	}
	if out.Products[0].Price != "$19.99" || out.Products[0].ReviewCount != 2001 {
		t.Fatalf("unexpected normalization: %+v", out.Products[0])
	}

	stats := out.Stats
	if stats.Sources != 4 || stats.RecordCount != 5 || stats.NormalizedCount != 4 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.DuplicateCount != 1 || stats.FilteredCount != 1 || stats.ReturnedCount != 2 {
		t.Fatalf("unexpected pipeline counts: %+v", stats)
	}
	if !slices.Equal(stats.FailedSources, []string{"aliexpress", "alibaba"}) {
		t.Fatalf("failed sources=%v", stats.FailedSources)
	}
	if !slices.Equal(stats.EmptySources, []string{"walmart"}) {
		t.Fatalf("empty sources=%v", stats.EmptySources)
	}

	if len(writer.dumps) != 1 {
		t.Fatalf("dumps=%d, want 1", len(writer.dumps))
	}
	if writer.dumps[0].Query.Text != "lamp" || len(writer.dumps[0].Products) != 2 {
		t.Fatalf("unexpected dump: %+v", writer.dumps[0])
	}
}

func TestSearchKeepsPlaceholderLinks(t *testing.T) {
	adapters := []scraper.Adapter{
		&fakeAdapter{name: "walmart", records: []models.RawRecord{
			{models.FieldTitle: "a", models.FieldPrice: "5"},
			{models.FieldTitle: "b", models.FieldPrice: "5"},
		}},
	}
	p := NewPipeline(adapters, config.DefaultConfig(), nil, nil)

	out := p.Search(context.Background(), models.SearchQuery{Text: "x", SortKey: models.SortRelevant})
	if len(out.Products) != 2 || out.Stats.DuplicateCount != 0 {
		t.Fatalf("placeholder links must not dedupe: %+v", out.Stats)
	}
}

func TestSearchAllEmptyReturnsEmptySlice(t *testing.T) {
	adapters := []scraper.Adapter{&fakeAdapter{name: "walmart"}, &fakeAdapter{name: "alibaba"}}
	p := NewPipeline(adapters, config.DefaultConfig(), nil, &mockWriter{err: fmt.Errorf("disk full")})

	out := p.Search(context.Background(), models.SearchQuery{Text: "x"})
	if out.Products == nil || len(out.Products) != 0 {
		t.Fatalf("products=%v, want empty non-nil slice", out.Products)
	}
}

func amazonPage(n int) string {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<div data-component-type="s-search-result">`)
		fmt.Fprintf(&b, `<h2><a href="/dp/P%02d"><span>Speaker %d</span></a></h2>`, i, i)
		fmt.Fprintf(&b, `<span class="a-price"><span class="a-price-whole">%d.</span></span>`, 10*i)
		fmt.Fprintf(&b, `<span class="a-icon-alt">4.%d out of 5 stars</span>`, i%10)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func TestNewSearchEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Sources = []string{"amazon", "walmart"}
	cfg.AmazonBaseURL = "http://amazon.test"
	cfg.DumpFile = filepath.Join(dir, "products.json")

	transport := httpmock.NewMockTransport()
	transport.RegisterNoResponder(httpmock.NewStringResponder(http.StatusOK, amazonPage(12)))

	metrics := scraper.NewMetrics()
	p, err := New(cfg, metrics, WithTransport(transport))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	q, err := models.NewSearchQuery("speaker", "electronics", 50, "price_high_to_low")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	out := p.Search(context.Background(), q)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if transport.GetTotalCallCount() != 1 {
		t.Fatalf("calls=%d, want 1", transport.GetTotalCallCount())
	}
	// Ten listings are extracted; the price ceiling of 55 keeps five.
	if got := titles(out.Products); !slices.Equal(got, []string{"Speaker 5", "Speaker 4", "Speaker 3", "Speaker 2", "Speaker 1"}) {
		t.Fatalf("products=%v", got)
	}
	if out.Products[0].URL != "http://amazon.test/dp/P05" || out.Products[0].Source != "Amazon" {
		t.Fatalf("unexpected product: %+v", out.Products[0])
	}

	data, err := os.ReadFile(cfg.DumpFile)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	var dump models.SearchDump
	if err := json.Unmarshal(data, &dump); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if len(dump.Results) != 2 || len(dump.Products) != 5 || dump.Query.Text != "speaker" {
		t.Fatalf("unexpected dump: results=%d products=%d", len(dump.Results), len(dump.Products))
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxAttempts = 0
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestValidateDump(t *testing.T) {
	adapters := []scraper.Adapter{&fakeAdapter{name: "walmart"}}

	if err := NewPipeline(adapters, config.DefaultConfig(), nil, nil).ValidateDump(); err != nil {
		t.Fatalf("no writer should validate, got %v", err)
	}

	writer := &mockWriter{validateErr: errors.New("json file is empty")}
	p := NewPipeline(adapters, config.DefaultConfig(), nil, writer)
	p.Search(context.Background(), models.SearchQuery{Text: "x"})

	err := p.ValidateDump()
	if err == nil || !errors.Is(err, writer.validateErr) {
		t.Fatalf("expected wrapped validate error, got %v", err)
	}

	if err := NewPipeline(adapters, config.DefaultConfig(), nil, &mockWriter{}).ValidateDump(); err != nil {
		t.Fatalf("healthy writer should validate, got %v", err)
	}
}

func TestSearchDedupeCapIsPerSearch(t *testing.T) {
	adapters := []scraper.Adapter{
		&fakeAdapter{name: "amazon", records: []models.RawRecord{
			record("A", "10", "4 out of 5", "1", "https://www.amazon.com/dp/A"),
			record("B", "10", "4 out of 5", "1", "https://www.amazon.com/dp/B"),
			record("A again", "10", "4 out of 5", "1", "https://www.amazon.com/dp/A"),
		}},
	}
	q := models.SearchQuery{Text: "x", SortKey: models.SortRelevant}

	p := NewPipeline(adapters, config.DefaultConfig(), nil, nil)
	for i := 0; i < 2; i++ {
		out := p.Search(context.Background(), q)
		if out.Stats.DuplicateCount != 1 || len(out.Products) != 2 {
			t.Fatalf("search %d: duplicates=%d products=%d, want 1 and 2", i, out.Stats.DuplicateCount, len(out.Products))
		}
	}

	cfg := config.DefaultConfig()
	cfg.DedupeMaxSize = 1
	capped := NewPipeline(adapters, cfg, nil, nil).Search(context.Background(), q)
	if capped.Stats.DuplicateCount != 0 || len(capped.Products) != 3 {
		t.Fatalf("cap of 1 should evict A before it repeats, got duplicates=%d products=%d", capped.Stats.DuplicateCount, len(capped.Products))
	}
}
