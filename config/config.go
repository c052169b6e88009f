package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds search engine configuration.
type Config struct {
	Sources          []string      `yaml:"sources"`
	AmazonBaseURL    string        `yaml:"amazon_base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxAttempts      int           `yaml:"max_attempts"`
	BackoffUnit      time.Duration `yaml:"backoff_unit"`
	SearchTimeout    time.Duration `yaml:"search_timeout"` // 0 disables the overall deadline
	MaxElements      int           `yaml:"max_elements"`
	PriceTolerance   float64       `yaml:"price_tolerance"`
	DedupeMaxSize    int           `yaml:"dedupe_max_size"`
	DumpFile         string        `yaml:"dump_file"`
	DumpFormat       string        `yaml:"dump_format"` // json, csv, or dual
	RespectRobotsTxt bool          `yaml:"respect_robots_txt"`
	Verbose          bool          `yaml:"verbose"`
	ListenAddr       string        `yaml:"listen_addr"`
	MetricsAddr      string        `yaml:"metrics_addr"`
	RateLimitRPS     float64       `yaml:"rate_limit_rps"`
	RateLimitBurst   int           `yaml:"rate_limit_burst"`
}

// DefaultConfig returns the settings the engine ships with.
func DefaultConfig() *Config {
	return &Config{
		Sources:          []string{"amazon", "aliexpress", "alibaba", "walmart"},
		AmazonBaseURL:    "https://www.amazon.com",
		Timeout:          30 * time.Second,
		MaxAttempts:      3,
		BackoffUnit:      time.Second,
		SearchTimeout:    0,
		MaxElements:      10,
		PriceTolerance:   1.1,
		DedupeMaxSize:    1000,
		DumpFile:         "",
		DumpFormat:       "json",
		RespectRobotsTxt: false,
		Verbose:          false,
		ListenAddr:       "0.0.0.0:8000",
		MetricsAddr:      "",
		RateLimitRPS:     5,
		RateLimitBurst:   10,
	}
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode config file %q: %w", path, err)
	}
	return nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}
	for _, name := range c.Sources {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("source names cannot be empty")
		}
	}

	parsedURL, err := url.Parse(c.AmazonBaseURL)
	if err != nil {
		return fmt.Errorf("invalid amazon base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("amazon base URL must include a host")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive")
	}
	if c.BackoffUnit < 0 {
		return fmt.Errorf("backoff unit cannot be negative")
	}
	if c.SearchTimeout < 0 {
		return fmt.Errorf("search timeout cannot be negative")
	}
	if c.MaxElements <= 0 {
		return fmt.Errorf("max elements must be positive")
	}
	if c.PriceTolerance < 1 {
		return fmt.Errorf("price tolerance must be at least 1.0")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	if c.DumpFormat != "csv" && c.DumpFormat != "json" && c.DumpFormat != "dual" {
		return fmt.Errorf("dump format must be csv, json, or dual")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}
