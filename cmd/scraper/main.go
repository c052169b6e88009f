package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/logging"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/pipeline"
	"github.com/aluiziolira/go-scrape-products/scraper"
)

func main() {
	defaultCfg := config.DefaultConfig()
	configDefault, _ := config.EnvString("SCRAPER_CONFIG")

	configPath := flag.String("config", configDefault, "YAML configuration file")
	query := flag.String("query", "", "Search text (remaining arguments are used when empty)")
	category := flag.String("category", models.DefaultCategory, "Product category")
	maxPrice := flag.Float64("max-price", 0, "Price ceiling before tolerance; 0 disables the filter")
	sortBy := flag.String("sort", string(models.SortRelevant), "Sort: relevant, price_low_to_high, price_high_to_low, highest_rating, most_popular")
	sourceList := flag.String("sources", strings.Join(defaultCfg.Sources, ","), "Comma separated marketplaces")
	maxAttempts := flag.Int("max-attempts", defaultCfg.MaxAttempts, "Fetch attempts per page")
	timeout := flag.Duration("timeout", defaultCfg.Timeout, "Per-request timeout")
	searchTimeout := flag.Duration("search-timeout", defaultCfg.SearchTimeout, "Overall search deadline (0 waits for every source)")
	respectRobots := flag.Bool("respect-robots", defaultCfg.RespectRobotsTxt, "Respect robots.txt directives")
	dumpFile := flag.String("dump", defaultCfg.DumpFile, "Write the search dump to this file")
	dumpFormat := flag.String("format", defaultCfg.DumpFormat, "Dump format: json, csv, or dual")
	verbose := flag.Bool("v", defaultCfg.Verbose, "Enable verbose logging")
	metricsAddr := flag.String("metrics-addr", defaultCfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	limit := flag.Int("show", 10, "Products to print")

	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	// Explicit flags win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sources":
			cfg.Sources = config.SplitList(*sourceList)
		case "max-attempts":
			cfg.MaxAttempts = *maxAttempts
		case "timeout":
			cfg.Timeout = *timeout
		case "search-timeout":
			cfg.SearchTimeout = *searchTimeout
		case "respect-robots":
			cfg.RespectRobotsTxt = *respectRobots
		case "dump":
			cfg.DumpFile = *dumpFile
		case "format":
			cfg.DumpFormat = strings.ToLower(*dumpFormat)
		case "v":
			cfg.Verbose = *verbose
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		}
	})

	logging.Setup(cfg.Verbose)

	text := *query
	if text == "" {
		text = strings.Join(flag.Args(), " ")
	}
	q, err := models.NewSearchQuery(text, *category, *maxPrice, *sortBy)
	if err != nil {
		slog.Error("invalid search", slog.Any("error", err))
		os.Exit(2)
	}

	metrics := scraper.NewMetrics()
	p, err := pipeline.New(cfg, metrics)
	if err != nil {
		slog.Error("initialising pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, abandoning in-flight fetches")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	out := p.Search(ctx, q)

	if cfg.DumpFile != "" {
		if err := p.ValidateDump(); err != nil {
			slog.Error("dump validation failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if err := p.Close(); err != nil {
		slog.Error("close dump writer", slog.Any("error", err))
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printProducts(out.Products, *limit)
	printSummary(q, out.Stats, cfg.DumpFile)
}

func printProducts(products []models.NormalizedProduct, limit int) {
	if len(products) == 0 {
		fmt.Println("\nNo products found")
		return
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	fmt.Println()
	for i, p := range products {
		fmt.Printf("%2d. %s\n", i+1, p.Title)
		fmt.Printf("    %s  rating %.1f (%d reviews)  [%s]\n", p.Price, p.Rating, p.ReviewCount, p.Source)
		fmt.Printf("    %s\n", p.URL)
	}
}

func printSummary(q models.SearchQuery, stats models.SearchStats, dumpFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Search complete")
	fmt.Printf("  Query:         %q (%s, sort %s)\n", q.Text, q.Category, q.SortKey)
	fmt.Printf("  Sources:       %d\n", stats.Sources)
	if len(stats.FailedSources) > 0 {
		fmt.Printf("  Failed:        %s\n", strings.Join(stats.FailedSources, ", "))
	}
	if len(stats.EmptySources) > 0 {
		fmt.Printf("  Empty:         %s\n", strings.Join(stats.EmptySources, ", "))
	}
	fmt.Printf("  Records:       %d\n", stats.RecordCount)
	fmt.Printf("  Duplicates:    %d\n", stats.DuplicateCount)
	fmt.Printf("  Over budget:   %d\n", stats.FilteredCount)
	fmt.Printf("  Returned:      %d\n", stats.ReturnedCount)
	fmt.Printf("  Duration:      %v\n", stats.Duration().Round(time.Millisecond))
	if dumpFile != "" {
		fmt.Printf("  Dump file:     %s\n", dumpFile)
	}
	fmt.Println(separator)
}
