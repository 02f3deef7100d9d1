package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/newsgrid.db" description:"Path to the SQLite database file"`

	// Source API credentials
	NewsDataAPIKey  string `long:"newsdata-api-key" env:"NEWSDATA_API_KEY" description:"API key for NewsData.io"`
	WorldNewsAPIKey string `long:"worldnews-api-key" env:"WORLDNEWS_API_KEY" description:"API key for World News API"`
	GNewsAPIKey     string `long:"gnews-api-key" env:"GNEWS_API_KEY" description:"API key for GNews"`

	// Fetch configuration
	MaxArticlesPerFetch int    `long:"max-articles" env:"MAX_ARTICLES_PER_FETCH" default:"20" description:"Maximum articles requested per source per category"`
	FetchInterval       int    `long:"fetch-interval" env:"FETCH_INTERVAL" default:"21600" description:"Interval between scheduled refreshes in seconds (0 disables scheduling)"`
	SourcesFile         string `long:"sources-file" env:"SOURCES_FILE" description:"Optional YAML file overriding categories, category mappings and extra RSS feeds"`
	ExtractContent      bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Enable full-text content extraction for stored articles"`

	// Application configuration
	Port      string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl   string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	FetchOnce bool   `long:"fetch" description:"Run one fetch-and-store cycle, print the summary and exit"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"newsgrid/1.0" description:"User agent string for outbound HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:              raw.DBPath,
		NewsDataAPIKey:      raw.NewsDataAPIKey,
		WorldNewsAPIKey:     raw.WorldNewsAPIKey,
		GNewsAPIKey:         raw.GNewsAPIKey,
		MaxArticlesPerFetch: raw.MaxArticlesPerFetch,
		FetchInterval:       raw.FetchInterval,
		SourcesFile:         raw.SourcesFile,
		ExtractContent:      raw.ExtractContent,
		Port:                raw.Port,
		BaseUrl:             raw.BaseUrl,
		FetchOnce:           raw.FetchOnce,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// SetForTesting replaces the global configuration. Tests only.
func SetForTesting(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
