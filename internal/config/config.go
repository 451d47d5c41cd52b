package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	LogLevel        string
	LogFormat       string
	HTTPAddr        string // empty disables the health/metrics server
	ShutdownTimeout time.Duration

	// NUFORC scrape configuration.
	NUFORCBaseURL   string
	NUFORCIndexPage string
	ScrapeTimeout   time.Duration
	ScrapeRate      float64 // requests per second
	ScrapeRetries   int     // extra attempts after a transient page failure

	ISOReferenceURL string

	// Output configuration.
	OutputDir       string
	RawDataFile     string
	UseRawCache     bool
	SQLitePath      string
	MetricsTextfile string

	// Kafka sink configuration. Disabled when no brokers are set.
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int // messages per WriteMessages call
}

// KafkaEnabled reports whether records should also be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	scrapeTimeout, err := parsePositiveDuration("SCRAPE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	scrapeRate, err := parseScrapeRate()
	if err != nil {
		return nil, err
	}

	scrapeRetries, err := parseScrapeRetries()
	if err != nil {
		return nil, err
	}

	useRawCache, err := parseBool("USE_RAW_CACHE", false)
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		NUFORCBaseURL:   sharedcfg.EnvOrDefault("NUFORC_BASE_URL", "http://www.nuforc.org/webreports/"),
		NUFORCIndexPage: sharedcfg.EnvOrDefault("NUFORC_INDEX_PAGE", "ndxevent.html"),
		ScrapeTimeout:   scrapeTimeout,
		ScrapeRate:      scrapeRate,
		ScrapeRetries:   scrapeRetries,

		ISOReferenceURL: sharedcfg.EnvOrDefault("ISO_REFERENCE_URL", "https://en.wikipedia.org/wiki/ISO_3166-2"),

		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),
		RawDataFile:     sharedcfg.EnvOrDefault("RAW_DATA_FILE", "nuforc_data.csv"),
		UseRawCache:     useRawCache,
		SQLitePath:      os.Getenv("SQLITE_PATH"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		KafkaBrokers:   sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "ufo-sightings"),
		BatchSize:      batchSize,
	}

	if !strings.HasSuffix(cfg.NUFORCBaseURL, "/") {
		cfg.NUFORCBaseURL += "/"
	}
	if _, err := url.ParseRequestURI(cfg.NUFORCBaseURL); err != nil {
		return nil, fmt.Errorf("invalid NUFORC_BASE_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.ISOReferenceURL); err != nil {
		return nil, fmt.Errorf("invalid ISO_REFERENCE_URL: %w", err)
	}
	if cfg.RawDataFile == "" {
		return nil, errors.New("RAW_DATA_FILE is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseScrapeRate() (float64, error) {
	s := sharedcfg.EnvOrDefault("SCRAPE_RATE", "2")
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil || rate <= 0 {
		return 0, errors.New("invalid SCRAPE_RATE")
	}
	return rate, nil
}

func parseScrapeRetries() (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault("SCRAPE_RETRIES", "2"))
	if err != nil || n < 0 || n > 10 {
		return 0, errors.New("invalid SCRAPE_RETRIES: must be 0-10")
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
