package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/rdf2rss/app/graph"
)

type GraphLoader interface {
	Load(ctx context.Context, store *graph.Store, uri string) (int, error)
}

type ContentSource interface {
	Run(ctx context.Context, postingURI string) (string, bool)
}

// Assembler turns one posting of the graph into a feed item.
type Assembler struct {
	loader   GraphLoader
	content  ContentSource
	filterer *Filterer
}

func NewAssembler(loader GraphLoader, content ContentSource) *Assembler {
	return &Assembler{
		loader:   loader,
		content:  content,
		filterer: NewFilterer(),
	}
}

// Run loads the posting's own graph into store and extracts its item. It
// returns nil without error when the keyword filter rejects the posting.
func (a *Assembler) Run(ctx context.Context, store *graph.Store, posting graph.Term, opts Options) (*Item, error) {
	link := posting.Value

	if _, err := a.loader.Load(ctx, store, link); err != nil {
		return nil, fmt.Errorf("failed to load posting %s: %w", link, err)
	}

	if opts.Keyword != "" {
		keywords := graph.CommaSeparatedValues(store, posting, graph.Keywords)
		if !a.filterer.Run(keywords, opts.Keyword) {
			slog.Debug("Posting filtered out", "url", link, "keyword", opts.Keyword)
			return nil, nil
		}
	}

	title, _, err := textValue(store, posting, graph.Name)
	if err != nil {
		return nil, err
	}

	description, hasDescription, err := textValue(store, posting, graph.Description)
	if err != nil {
		return nil, err
	}
	if !hasDescription && opts.ContentFallback && a.content != nil {
		if content, ok := a.content.Run(ctx, link); ok {
			description = content
		}
	}

	publishedAt, err := timeValue(store, posting, graph.DatePublished)
	if err != nil {
		return nil, err
	}

	author, _, err := textValue(store, posting, graph.Author, graph.Email)
	if err != nil {
		return nil, err
	}

	return &Item{
		Title:       title,
		Link:        link,
		GUID:        link,
		Description: description,
		Author:      strings.TrimPrefix(author, "mailto:"),
		PublishedAt: publishedAt,
	}, nil
}

// textValue resolves path from subject as text. Non-text values are used by
// their lexical form. The boolean reports whether the path resolved at all,
// so a present but blank value is distinguishable from absence.
func textValue(store *graph.Store, subject graph.Term, path ...graph.Term) (string, bool, error) {
	res := graph.Extract(store, subject, path...)
	switch res.Outcome {
	case graph.Ambiguous:
		return "", false, res.Err
	case graph.Absent:
		return "", false, nil
	}
	return res.Value.Text, true, nil
}

func timeValue(store *graph.Store, subject graph.Term, path ...graph.Term) (*time.Time, error) {
	res := graph.Extract(store, subject, path...)
	switch res.Outcome {
	case graph.Ambiguous:
		return nil, res.Err
	case graph.Absent:
		return nil, nil
	}

	if res.Value.Kind != graph.ValueTime {
		slog.Warn("Ignoring non-temporal schema:datePublished", "url", subject.Value, "value", res.Value.Text)
		return nil, nil
	}

	t := res.Value.Time.UTC()
	return &t, nil
}
