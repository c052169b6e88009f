package scraper

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-products/config"
)

// headerProfiles is the fixed pool of client fingerprints; one is picked at
// random for every attempt.
var headerProfiles = []http.Header{
	{
		"User-Agent":                {"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"},
		"Accept":                    {"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"},
		"Accept-Language":           {"en-US,en;q=0.5"},
		"Accept-Encoding":           {"gzip"},
		"Dnt":                       {"1"},
		"Connection":                {"keep-alive"},
		"Upgrade-Insecure-Requests": {"1"},
	},
	{
		"User-Agent":                {"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36"},
		"Accept":                    {"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"},
		"Accept-Language":           {"en-US,en;q=0.5"},
		"Accept-Encoding":           {"gzip"},
		"Dnt":                       {"1"},
		"Connection":                {"keep-alive"},
		"Upgrade-Insecure-Requests": {"1"},
	},
}

// Fetcher retrieves page bodies with bounded retries. A fetch that runs out
// of attempts is a normal outcome reported as ok == false, not an error.
type Fetcher struct {
	collector   *colly.Collector
	maxAttempts int
	unit        time.Duration
	metrics     *Metrics

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher builds a fetcher from cfg. metrics may be nil.
func NewFetcher(cfg *config.Config, metrics *Metrics) *Fetcher {
	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Fetcher{
		collector:   collector,
		maxAttempts: cfg.MaxAttempts,
		unit:        cfg.BackoffUnit,
		metrics:     metrics,
		sleep:       sleepContext,
	}
}

// SetTransport replaces the HTTP transport shared by every attempt.
func (f *Fetcher) SetTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Fetch returns the body of url. 429 responses back off 2^attempt units,
// transport failures wait one unit, any other status retries at once.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, bool) {
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", false
		}

		body, status, err := f.attempt(url)
		if err == nil && status == http.StatusOK {
			f.metrics.IncAttempt("ok")
			slog.Debug("fetch succeeded",
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Int("bytes", len(body)),
			)
			return body, true
		}

		label := errorTypeLabel(classifyError(err, status))
		f.metrics.IncAttempt(label)
		f.metrics.IncError(label)
		slog.Warn("fetch attempt failed",
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Int("status", status),
			slog.String("category", label),
			slog.Any("error", err),
		)

		if attempt == f.maxAttempts {
			break
		}

		wait := f.backoff(attempt, status)
		f.metrics.IncRetries()
		if wait > 0 {
			if err := f.sleep(ctx, wait); err != nil {
				return "", false
			}
		}
	}

	slog.Warn("fetch exhausted",
		slog.String("url", url),
		slog.Int("attempts", f.maxAttempts),
	)
	return "", false
}

// backoff is the wait before the attempt following a failed one.
func (f *Fetcher) backoff(attempt, status int) time.Duration {
	switch {
	case status == http.StatusTooManyRequests:
		return f.unit * time.Duration(1<<attempt)
	case status == 0:
		return f.unit
	default:
		return 0
	}
}

// attempt issues one GET on a clone of the shared collector so the callbacks
// only ever see this attempt's response.
func (f *Fetcher) attempt(url string) (string, int, error) {
	c := f.collector.Clone()

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	start := time.Now()
	err := c.Request(http.MethodGet, url, nil, nil, pickProfile())
	f.metrics.ObserveDuration(time.Since(start))

	return string(body), status, err
}

func pickProfile() http.Header {
	return headerProfiles[rand.IntN(len(headerProfiles))].Clone()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
