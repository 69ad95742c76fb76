package database

import (
	"time"
)

// Feed is the rendered-feed record of one configured blog.
type Feed struct {
	Name        string // Blog identifier derived from the config filename
	URL         string // Blog root resource
	Format      string // rss, atom or json
	Document    string // Last successfully rendered document, empty until the first build
	ItemCount   int
	BuiltAt     *time.Time
	NextBuildAt *time.Time
	LastError   string // Error of the last failed build, cleared on success
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (f *Feed) IsBuilt() bool {
	return f.BuiltAt != nil && f.Document != ""
}
