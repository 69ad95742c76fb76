package cfg

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Feed generation
	ContentFallback bool   `short:"d" long:"description" env:"RDF2RSS_DESCRIPTION" description:"Use the post content as description when schema:description is missing"`
	Keyword         string `short:"k" long:"keyword" env:"RDF2RSS_KEYWORD" value-name:"KEYWORD" description:"Only include posts with this keyword"`
	Limit           int    `short:"l" long:"limit" env:"RDF2RSS_LIMIT" value-name:"NUMBER" description:"Only include the latest NUMBER posts"`
	Verbose         bool   `short:"v" long:"verbose" env:"RDF2RSS_VERBOSE" description:"Dump the loaded graph as Turtle to stderr"`
	Format          string `short:"f" long:"format" env:"RDF2RSS_FORMAT" default:"rss" choice:"rss" choice:"atom" choice:"json" description:"Output format"`
	Readability     bool   `long:"readability" env:"RDF2RSS_READABILITY" description:"Extract post content with readability instead of the page markup"`
	SanitizePolicy  string `long:"sanitize-policy" env:"RDF2RSS_SANITIZE_POLICY" default:"none" choice:"none" choice:"ugc" description:"HTML policy applied to extracted post content"`

	// Serve mode
	Serve             bool   `long:"serve" env:"SERVE" description:"Run as a server building the feeds of the configured blogs"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	FeedsDir          string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing blog configuration files"`
	DBPath            string `long:"db-path" env:"DB_PATH" default:"./rdf2rss.db" description:"SQLite database holding rendered feeds"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers building feeds"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent   string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`
	Timeout     int    `long:"timeout" env:"HTTP_TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	ShowVersion bool   `long:"version" description:"Print the version and exit"`

	Args struct {
		URL  string `positional-arg-name:"URL" description:"Blog resource to build the feed from"`
		File string `positional-arg-name:"FILE" description:"Write the feed to FILE instead of stdout"`
	} `positional-args:"yes"`
}

// Load parses command-line arguments and environment variables. It returns
// nil and no error when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Name = "rdf2rss"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", rest)
	}

	cfg := &Cfg{
		URL:               raw.Args.URL,
		File:              raw.Args.File,
		ContentFallback:   raw.ContentFallback,
		Keyword:           raw.Keyword,
		Limit:             raw.Limit,
		Verbose:           raw.Verbose,
		Format:            raw.Format,
		Readability:       raw.Readability,
		SanitizePolicy:    raw.SanitizePolicy,
		Serve:             raw.Serve,
		Port:              raw.Port,
		FeedsDir:          raw.FeedsDir,
		DBPath:            raw.DBPath,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timeout:           raw.Timeout,
		Debug:             raw.Debug,
		ShowVersion:       raw.ShowVersion,
		Version:           GetVersion(),
	}

	limitSet := parser.FindOptionByLongName("limit").IsSet()
	if err := validate(cfg, limitSet); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg, limitSet bool) error {
	if cfg.ShowVersion {
		return nil
	}

	if !cfg.Serve && cfg.URL == "" {
		return fmt.Errorf("the URL argument is required")
	}
	if limitSet && cfg.Limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got %d", cfg.Limit)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", cfg.Timeout)
	}
	if cfg.Serve {
		if cfg.WorkerCount <= 0 {
			return fmt.Errorf("worker count must be positive, got %d", cfg.WorkerCount)
		}
		if cfg.SchedulerInterval <= 0 {
			return fmt.Errorf("scheduler interval must be positive, got %d", cfg.SchedulerInterval)
		}
	}

	return nil
}
