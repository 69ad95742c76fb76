package feed

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/lysyi3m/rdf2rss/app/graph"
)

type Composer struct {
	now func() time.Time
}

func NewComposer() *Composer {
	return &Composer{now: time.Now}
}

// Run orders items newest first, keeps undated items last in the order they
// were found, and builds the feed around them.
func (c *Composer) Run(store *graph.Store, root graph.Term, items []Item, opts Options) (*Feed, error) {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, compareItems)

	for _, item := range sorted {
		if item.PublishedAt == nil {
			slog.Warn("Post has no schema:datePublished, cannot sort properly", "url", item.Link)
		}
	}

	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}

	title, _, err := textValue(store, root, graph.Name)
	if err != nil {
		return nil, err
	}
	if opts.Keyword != "" {
		title = strings.TrimSpace(title + " (#" + opts.Keyword + ")")
	}

	description, _, err := textValue(store, root, graph.Description)
	if err != nil {
		return nil, err
	}

	return &Feed{
		Title:       title,
		Link:        root.Value,
		Description: description,
		BuiltAt:     c.now().UTC(),
		Items:       sorted,
	}, nil
}

func compareItems(a, b Item) int {
	switch {
	case a.PublishedAt == nil && b.PublishedAt == nil:
		return 0
	case a.PublishedAt == nil:
		return 1
	case b.PublishedAt == nil:
		return -1
	}
	return b.PublishedAt.Compare(*a.PublishedAt)
}
