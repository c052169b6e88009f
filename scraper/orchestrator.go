package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-scrape-products/models"
)

// Adapter is the part of a marketplace source the orchestrator drives.
type Adapter interface {
	Name() string
	Scrape(ctx context.Context, q models.SearchQuery) (models.ScrapeResult, error)
}

// Orchestrator fans one query out to every configured adapter.
type Orchestrator struct {
	adapters []Adapter
	deadline time.Duration
	metrics  *Metrics
}

// NewOrchestrator builds an orchestrator. A zero deadline lets ScrapeAll wait
// for every adapter however long it takes.
func NewOrchestrator(adapters []Adapter, deadline time.Duration, metrics *Metrics) *Orchestrator {
	return &Orchestrator{
		adapters: adapters,
		deadline: deadline,
		metrics:  metrics,
	}
}

// Adapters returns the number of configured adapters.
func (o *Orchestrator) Adapters() int {
	return len(o.adapters)
}

type outcome struct {
	index  int
	result models.ScrapeResult
}

// ScrapeAll runs every adapter concurrently and returns exactly one result
// per adapter, in adapter order. Adapter errors and panics come back as
// error-tagged results; ScrapeAll itself never fails.
func (o *Orchestrator) ScrapeAll(ctx context.Context, q models.SearchQuery) []models.ScrapeResult {
	if o.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.deadline)
		defer cancel()
	}

	outcomes := make(chan outcome, len(o.adapters))
	for i, adapter := range o.adapters {
		go func() {
			outcomes <- outcome{index: i, result: o.run(ctx, adapter, q)}
		}()
	}

	results := make([]models.ScrapeResult, len(o.adapters))
	reported := make([]bool, len(o.adapters))
	for remaining := len(o.adapters); remaining > 0; remaining-- {
		select {
		case out := <-outcomes:
			results[out.index] = out.result
			reported[out.index] = true
		case <-ctx.Done():
			drainOutcomes(outcomes, results, reported)
			for i, adapter := range o.adapters {
				if reported[i] {
					continue
				}
				slog.Warn("adapter did not report before deadline",
					slog.String("source", adapter.Name()),
					slog.Any("error", ctx.Err()),
				)
				results[i] = o.faultResult(adapter, q, ctx.Err())
			}
			return o.observe(results)
		}
	}
	return o.observe(results)
}

// drainOutcomes collects outcomes already delivered when the deadline fires,
// so an adapter that reported in time is never tagged with the deadline.
func drainOutcomes(outcomes <-chan outcome, results []models.ScrapeResult, reported []bool) {
	for {
		select {
		case out := <-outcomes:
			results[out.index] = out.result
			reported[out.index] = true
		default:
			return
		}
	}
}

// run invokes one adapter and contains whatever it does wrong.
func (o *Orchestrator) run(ctx context.Context, adapter Adapter, q models.SearchQuery) (result models.ScrapeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = o.contain(ctx, adapter, q, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err := adapter.Scrape(ctx, q)
	if err != nil {
		return o.contain(ctx, adapter, q, err)
	}
	if res.Source == "" {
		res.Source = adapter.Name()
	}
	if res.Records == nil {
		res.Records = []models.RawRecord{}
	}
	return res
}

// contain records the fault, consults the alternative strategy and falls
// back to an error-tagged result for the adapter.
func (o *Orchestrator) contain(ctx context.Context, adapter Adapter, q models.SearchQuery, fault error) models.ScrapeResult {
	fault = AdapterFault{Source: adapter.Name(), Err: fault}
	o.metrics.IncError(errorTypeLabel(fault))
	slog.Warn("adapter fault contained",
		slog.String("source", adapter.Name()),
		slog.Any("error", fault),
	)

	alt, err := alternativeScrape(ctx, adapter, q)
	if err == nil {
		return alt
	}
	slog.Debug("alternative strategy unavailable",
		slog.String("source", adapter.Name()),
		slog.String("stand_in_source", alt.Source),
		slog.Any("error", err),
	)
	return o.faultResult(adapter, q, fault)
}

func (o *Orchestrator) faultResult(adapter Adapter, q models.SearchQuery, err error) models.ScrapeResult {
	var fault AdapterFault
	if errors.As(err, &fault) {
		err = fault.Err
	}
	return models.ScrapeResult{
		Source:  adapter.Name(),
		Records: []models.RawRecord{},
		Query:   q,
		Error:   err.Error(),
	}
}

// alternativeScrape is the secondary strategy tried after a fault. No
// working strategy exists yet; it always returns the fixed stand-in.
// TODO: replace once a real failover path per marketplace is agreed on.
func alternativeScrape(_ context.Context, _ Adapter, q models.SearchQuery) (models.ScrapeResult, error) {
	return models.ScrapeResult{
		Source:  "fallback",
		Records: []models.RawRecord{},
		Query:   q,
		Error:   ErrAlternativeNotImplemented.Error(),
	}, ErrAlternativeNotImplemented
}

func (o *Orchestrator) observe(results []models.ScrapeResult) []models.ScrapeResult {
	for _, res := range results {
		status := "ok"
		switch {
		case res.Failed():
			status = "error"
		case len(res.Records) == 0:
			status = "empty"
		}
		o.metrics.ObserveResult(res.Source, status, len(res.Records))
		slog.Debug("scrape result joined",
			slog.String("source", res.Source),
			slog.String("status", status),
			slog.Int("records", len(res.Records)),
		)
	}
	return results
}
