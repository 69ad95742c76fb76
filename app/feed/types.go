package feed

import (
	"time"
)

const (
	FormatRSS  = "rss"
	FormatAtom = "atom"
	FormatJSON = "json"
)

const (
	PolicyNone = "none"
	PolicyUGC  = "ugc"
)

// Feed processing types

type Item struct {
	Title       string
	Link        string
	GUID        string
	Description string
	Author      string
	PublishedAt *time.Time
}

type Feed struct {
	Title       string
	Link        string
	Description string
	BuiltAt     time.Time
	Items       []Item
}

// Options drive a single pipeline run.
type Options struct {
	Root            string
	Keyword         string
	Limit           int // 0 keeps every item
	ContentFallback bool
	Readability     bool
	SanitizePolicy  string
	Verbose         bool
	Format          string
}

// Configuration types

type Config struct {
	Name     string         `yaml:"-" toml:"-"` // Derived from filename (without extension)
	URL      string         `yaml:"url" toml:"url"`
	Keyword  string         `yaml:"keyword" toml:"keyword"`
	Limit    int            `yaml:"limit" toml:"limit"`
	Format   string         `yaml:"format" toml:"format"`
	Settings ConfigSettings `yaml:"settings" toml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool   `yaml:"enabled" toml:"enabled"`
	RefreshInterval int    `yaml:"refresh_interval" toml:"refresh_interval"` // seconds
	Timeout         int    `yaml:"timeout" toml:"timeout"`                   // seconds
	ContentFallback bool   `yaml:"content_fallback" toml:"content_fallback"`
	Readability     bool   `yaml:"readability" toml:"readability"`
	SanitizePolicy  string `yaml:"sanitize_policy" toml:"sanitize_policy"`
}

// Options converts a blog config into pipeline options.
func (c *Config) Options() Options {
	return Options{
		Root:            c.URL,
		Keyword:         c.Keyword,
		Limit:           c.Limit,
		ContentFallback: c.Settings.ContentFallback,
		Readability:     c.Settings.Readability,
		SanitizePolicy:  c.Settings.SanitizePolicy,
		Format:          c.Format,
	}
}
