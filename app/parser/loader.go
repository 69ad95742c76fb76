package parser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rdf2rss/app/fetch"
	"github.com/lysyi3m/rdf2rss/app/graph"
)

// Loader fetches RDF documents and merges them into a store.
type Loader struct {
	fetcher fetch.Fetcher
	parser  *Parser
}

func NewLoader(fetcher fetch.Fetcher, parser *Parser) *Loader {
	return &Loader{
		fetcher: fetcher,
		parser:  parser,
	}
}

// Load fetches uri, parses it under the format guessed from its shape (or from
// the response media type when the shape says nothing) and merges the result
// into store. It returns the number of triples that were new to the store.
func (l *Loader) Load(ctx context.Context, store *graph.Store, uri string) (int, error) {
	format := GuessFormat(uri)

	resp, err := l.fetcher.Fetch(ctx, uri, acceptFor(format))
	if err != nil {
		return 0, err
	}

	if format == FormatUnknown {
		format = FormatForMediaType(resp.ContentType)
	}
	if format == FormatUnknown {
		return 0, &ParseError{URL: uri, Err: fmt.Errorf("cannot determine RDF format (content type %q)", resp.ContentType)}
	}

	triples, err := l.parser.Run(ctx, resp.Body, format, uri)
	if err != nil {
		return 0, err
	}

	added := store.Merge(triples)
	slog.Debug("Graph loaded", "url", uri, "format", format, "triples", len(triples), "added", added)

	return added, nil
}

func acceptFor(format Format) string {
	if format == FormatRDFa {
		return fetch.AcceptHTML
	}
	return fetch.AcceptGraph
}
