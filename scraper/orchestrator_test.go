package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-products/models"
)

type fakeAdapter struct {
	name    string
	records int
	err     error
	panics  bool
	delay   time.Duration
}

func (f fakeAdapter) Name() string { return f.name }

func (f fakeAdapter) Scrape(ctx context.Context, q models.SearchQuery) (models.ScrapeResult, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return models.ScrapeResult{}, ctx.Err()
		}
	}
	if f.panics {
		panic("selector table corrupted")
	}
	if f.err != nil {
		return models.ScrapeResult{}, f.err
	}
	res := models.ScrapeResult{Source: f.name, Query: q}
	for i := 0; i < f.records; i++ {
		res.Records = append(res.Records, models.RawRecord{models.FieldTitle: "item"})
	}
	return res, nil
}

func testQuery(t *testing.T) models.SearchQuery {
	t.Helper()
	q, err := models.NewSearchQuery("headphones", "electronics", 100, "relevant")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	return q
}

func TestScrapeAllReturnsOneResultPerAdapter(t *testing.T) {
	adapters := []Adapter{
		fakeAdapter{name: "amazon", records: 3},
		fakeAdapter{name: "alibaba", panics: true},
		fakeAdapter{name: "walmart"},
		fakeAdapter{name: "aliexpress", err: errors.New("selector drift")},
	}
	o := NewOrchestrator(adapters, 0, NewMetrics())

	results := o.ScrapeAll(context.Background(), testQuery(t))
	if len(results) != len(adapters) {
		t.Fatalf("results=%d, want %d", len(results), len(adapters))
	}

	seen := make(map[string]int)
	for _, res := range results {
		seen[res.Source]++
		if res.Records == nil {
			t.Fatalf("%s: records must not be nil", res.Source)
		}
	}
	for _, a := range adapters {
		if seen[a.Name()] != 1 {
			t.Fatalf("source %s seen %d times, want 1 (%v)", a.Name(), seen[a.Name()], seen)
		}
	}

	if got := len(results[0].Records); got != 3 || results[0].Failed() {
		t.Fatalf("amazon result unexpected: %+v", results[0])
	}
	if !results[1].Failed() || results[1].Error != "panic: selector table corrupted" {
		t.Fatalf("panicking adapter should be error tagged, got %+v", results[1])
	}
	if results[2].Failed() || len(results[2].Records) != 0 {
		t.Fatalf("empty adapter should have no error, got %+v", results[2])
	}
	if results[3].Error != "selector drift" {
		t.Fatalf("error=%q, want selector drift", results[3].Error)
	}
}

func TestScrapeAllEveryAdapterFailing(t *testing.T) {
	adapters := []Adapter{
		fakeAdapter{name: "a", panics: true},
		fakeAdapter{name: "b", panics: true},
		fakeAdapter{name: "c", err: errors.New("down")},
	}
	results := NewOrchestrator(adapters, 0, nil).ScrapeAll(context.Background(), testQuery(t))
	if len(results) != 3 {
		t.Fatalf("results=%d, want 3", len(results))
	}
	for _, res := range results {
		if !res.Failed() {
			t.Fatalf("%s should be error tagged", res.Source)
		}
	}
}

func TestScrapeAllWaitsForSlowAdapters(t *testing.T) {
	adapters := []Adapter{
		fakeAdapter{name: "fast", records: 1},
		fakeAdapter{name: "slow", records: 2, delay: 30 * time.Millisecond},
	}
	results := NewOrchestrator(adapters, 0, nil).ScrapeAll(context.Background(), testQuery(t))
	if len(results[1].Records) != 2 {
		t.Fatalf("slow adapter result missing: %+v", results[1])
	}
}

func TestScrapeAllDeadline(t *testing.T) {
	adapters := []Adapter{
		fakeAdapter{name: "fast", records: 1},
		fakeAdapter{name: "stalled", delay: time.Hour},
	}
	o := NewOrchestrator(adapters, 20*time.Millisecond, nil)

	start := time.Now()
	results := o.ScrapeAll(context.Background(), testQuery(t))
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("deadline not honoured, took %v", elapsed)
	}
	if len(results) != 2 {
		t.Fatalf("results=%d, want 2", len(results))
	}
	if results[0].Failed() || len(results[0].Records) != 1 {
		t.Fatalf("fast adapter result unexpected: %+v", results[0])
	}
	if results[1].Source != "stalled" || !results[1].Failed() {
		t.Fatalf("stalled adapter should be error tagged, got %+v", results[1])
	}
}

func TestAlternativeScrapeIsPlaceholder(t *testing.T) {
	res, err := alternativeScrape(context.Background(), fakeAdapter{name: "amazon"}, testQuery(t))
	if !errors.Is(err, ErrAlternativeNotImplemented) {
		t.Fatalf("err=%v, want ErrAlternativeNotImplemented", err)
	}
	if res.Source != "fallback" || res.Error != "alternative method not implemented" {
		t.Fatalf("unexpected stand-in result: %+v", res)
	}
}

func TestDrainOutcomesKeepsDeliveredResults(t *testing.T) {
	outcomes := make(chan outcome, 3)
	outcomes <- outcome{index: 0, result: models.ScrapeResult{Source: "fast", Records: []models.RawRecord{{models.FieldTitle: "item"}}}}
	outcomes <- outcome{index: 2, result: models.ScrapeResult{Source: "quick"}}

	results := make([]models.ScrapeResult, 3)
	reported := make([]bool, 3)
	drainOutcomes(outcomes, results, reported)

	if !reported[0] || !reported[2] || reported[1] {
		t.Fatalf("reported=%v, want [true false true]", reported)
	}
	if results[0].Source != "fast" || len(results[0].Records) != 1 {
		t.Fatalf("delivered result lost: %+v", results[0])
	}
	if len(outcomes) != 0 {
		t.Fatalf("channel not drained, %d left", len(outcomes))
	}
}
