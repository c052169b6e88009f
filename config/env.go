package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the trimmed value of key and whether it was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// EnvFloat parses key as a float.
func EnvFloat(key string) (float64, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return f, true, nil
}

// EnvBool parses key with strconv.ParseBool.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return b, true, nil
}

// EnvDuration parses key with time.ParseDuration.
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return d, true, nil
}

// ApplyEnv overlays SCRAPER_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if value, ok := EnvString("SCRAPER_SOURCES"); ok {
		c.Sources = SplitList(value)
	}
	if value, ok := EnvString("SCRAPER_AMAZON_BASE_URL"); ok {
		c.AmazonBaseURL = value
	}
	if value, ok, err := EnvDuration("SCRAPER_TIMEOUT"); err != nil {
		return err
	} else if ok {
		c.Timeout = value
	}
	if value, ok, err := EnvInt("SCRAPER_MAX_ATTEMPTS"); err != nil {
		return err
	} else if ok {
		c.MaxAttempts = value
	}
	if value, ok, err := EnvDuration("SCRAPER_BACKOFF_UNIT"); err != nil {
		return err
	} else if ok {
		c.BackoffUnit = value
	}
	if value, ok, err := EnvDuration("SCRAPER_SEARCH_TIMEOUT"); err != nil {
		return err
	} else if ok {
		c.SearchTimeout = value
	}
	if value, ok, err := EnvFloat("SCRAPER_PRICE_TOLERANCE"); err != nil {
		return err
	} else if ok {
		c.PriceTolerance = value
	}
	if value, ok := EnvString("SCRAPER_DUMP_FILE"); ok {
		c.DumpFile = value
	}
	if value, ok := EnvString("SCRAPER_DUMP_FORMAT"); ok {
		c.DumpFormat = strings.ToLower(value)
	}
	if value, ok, err := EnvBool("SCRAPER_VERBOSE"); err != nil {
		return err
	} else if ok {
		c.Verbose = value
	}
	if value, ok := EnvString("SCRAPER_LISTEN_ADDR"); ok {
		c.ListenAddr = value
	}
	if value, ok := EnvString("SCRAPER_METRICS_ADDR"); ok {
		c.MetricsAddr = value
	}
	if value, ok, err := EnvFloat("SCRAPER_RATE_LIMIT_RPS"); err != nil {
		return err
	} else if ok {
		c.RateLimitRPS = value
	}
	if value, ok, err := EnvInt("SCRAPER_RATE_LIMIT_BURST"); err != nil {
		return err
	} else if ok {
		c.RateLimitBurst = value
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
