package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lysyi3m/rdf2rss/app/fetch"
	"github.com/lysyi3m/rdf2rss/app/graph"
)

// Pipeline runs one blog from its root resource to a composed feed. Each run
// builds its own graph store.
type Pipeline struct {
	loader    GraphLoader
	fetcher   fetch.Fetcher
	composer  *Composer
	generator *Generator
	diag      io.Writer
}

func NewPipeline(loader GraphLoader, fetcher fetch.Fetcher, diag io.Writer) *Pipeline {
	if diag == nil {
		diag = io.Discard
	}
	return &Pipeline{
		loader:    loader,
		fetcher:   fetcher,
		composer:  NewComposer(),
		generator: NewGenerator(),
		diag:      diag,
	}
}

func (p *Pipeline) Run(ctx context.Context, opts Options) (*Feed, error) {
	store := graph.NewStore()
	root := graph.NewIRI(opts.Root)

	if _, err := p.loader.Load(ctx, store, opts.Root); err != nil {
		return nil, fmt.Errorf("failed to load blog %s: %w", opts.Root, err)
	}

	postings := store.Subjects(graph.Type, graph.BlogPosting)
	slog.Debug("Postings discovered", "url", opts.Root, "count", len(postings))

	assembler := NewAssembler(p.loader, NewSanitizer(p.fetcher, opts.Readability, opts.SanitizePolicy))

	items := make([]Item, 0, len(postings))
	for _, posting := range postings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !posting.IsIRI() {
			slog.Warn("Skipping posting without a URL", "node", posting.String())
			continue
		}

		item, err := assembler.Run(ctx, store, posting, opts)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}
	}

	if opts.Verbose {
		if err := store.WriteTurtle(p.diag); err != nil {
			return nil, fmt.Errorf("failed to dump graph: %w", err)
		}
	}

	return p.composer.Run(store, root, items, opts)
}

// Render runs the pipeline and renders the result in opts.Format.
func (p *Pipeline) Render(ctx context.Context, opts Options) (string, int, error) {
	f, err := p.Run(ctx, opts)
	if err != nil {
		return "", 0, err
	}

	doc, err := p.generator.Run(f, opts.Format)
	if err != nil {
		return "", 0, err
	}

	return doc, len(f.Items), nil
}
