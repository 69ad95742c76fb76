package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rdf2rss/app/fetch"
	"github.com/lysyi3m/rdf2rss/app/graph"
)

// fakeLoader serves canned triples per resource.
type fakeLoader struct {
	graphs map[string][]graph.Triple
	loads  []string
}

func (l *fakeLoader) Load(_ context.Context, store *graph.Store, uri string) (int, error) {
	l.loads = append(l.loads, uri)
	triples, ok := l.graphs[uri]
	if !ok {
		return 0, &fetch.FetchError{URL: uri, StatusCode: 404, Err: fmt.Errorf("not found")}
	}
	return store.Merge(triples), nil
}

type fakeContent struct {
	content map[string]string
	calls   int
}

func (c *fakeContent) Run(_ context.Context, uri string) (string, bool) {
	c.calls++
	content, ok := c.content[uri]
	return content, ok
}

func triple(s, p string, o graph.Term) graph.Triple {
	return graph.Triple{Subject: graph.NewIRI(s), Predicate: graph.NewIRI(p), Object: o}
}

func text(s string) graph.Term {
	return graph.NewLiteral(s, "", "")
}

func date(s string) graph.Term {
	return graph.NewLiteral(s, graph.XSDDate, "")
}

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// recordingHandler keeps every log record at or above its level.
type recordingHandler struct {
	mu      sync.Mutex
	level   slog.Level
	records []slog.Record
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(_ string) slog.Handler      { return h }

func (h *recordingHandler) count(message string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.records {
		if r.Message == message {
			n++
		}
	}
	return n
}

// captureWarnings installs a recording default logger until the returned
// function is called.
func captureWarnings() (*recordingHandler, func()) {
	h := &recordingHandler{level: slog.LevelWarn}
	previous := slog.Default()
	slog.SetDefault(slog.New(h))
	return h, func() { slog.SetDefault(previous) }
}
