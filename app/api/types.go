package api

import (
	"github.com/lysyi3m/rdf2rss/app/database"
	"github.com/lysyi3m/rdf2rss/app/feed"
	"github.com/lysyi3m/rdf2rss/app/tasks"
)

type Handler struct {
	feedRepo    database.FeedRepository
	configCache *feed.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
	version     string
}

// blogInfo is the API view of a configured blog and its stored build.
type blogInfo struct {
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	Keyword         string  `json:"keyword,omitempty"`
	Limit           int     `json:"limit,omitempty"`
	Format          string  `json:"format"`
	Enabled         bool    `json:"enabled"`
	RefreshInterval string  `json:"refresh_interval"`
	Built           bool    `json:"built"`
	ItemCount       int     `json:"item_count"`
	BuiltAt         *string `json:"built_at,omitempty"`
	NextBuildAt     *string `json:"next_build_at,omitempty"`
	LastError       string  `json:"last_error,omitempty"`
}
