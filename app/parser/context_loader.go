package parser

import (
	"bytes"
	"context"
	"sync"

	"github.com/piprate/json-gold/ld"

	"github.com/lysyi3m/rdf2rss/app/fetch"
)

const acceptJSONLD = "application/ld+json, application/json;q=0.9, */*;q=0.1"

// contextCache resolves remote JSON-LD documents (usually @context
// references) through the fetcher and keeps successful loads for the
// lifetime of the process.
type contextCache struct {
	fetcher fetch.Fetcher

	mu   sync.Mutex
	docs map[string]*ld.RemoteDocument
}

func newContextCache(fetcher fetch.Fetcher) *contextCache {
	return &contextCache{
		fetcher: fetcher,
		docs:    make(map[string]*ld.RemoteDocument),
	}
}

// bind returns a document loader whose fetches run under ctx.
func (c *contextCache) bind(ctx context.Context) ld.DocumentLoader {
	return &boundLoader{ctx: ctx, cache: c}
}

func (c *contextCache) load(ctx context.Context, u string) (*ld.RemoteDocument, error) {
	c.mu.Lock()
	doc, ok := c.docs[u]
	c.mu.Unlock()
	if ok {
		return doc, nil
	}

	resp, err := c.fetcher.Fetch(ctx, u, acceptJSONLD)
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
	}

	parsed, err := ld.DocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
	}

	doc = &ld.RemoteDocument{DocumentURL: resp.URL, Document: parsed}

	c.mu.Lock()
	c.docs[u] = doc
	c.mu.Unlock()

	return doc, nil
}

type boundLoader struct {
	ctx   context.Context
	cache *contextCache
}

func (l *boundLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	return l.cache.load(l.ctx, u)
}
