package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lysyi3m/rdf2rss/app/fetch"
	"github.com/lysyi3m/rdf2rss/app/graph"
)

func remoteContextDoc(contextURL string) []byte {
	return []byte(fmt.Sprintf(`{
		"@context": %q,
		"@id": "https://example.org/blog/p3.html",
		"@type": "BlogPosting",
		"name": "Third post"
	}`, contextURL))
}

func TestParser_RemoteContext(t *testing.T) {
	var hits atomic.Int32
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/ld+json")
		w.Write([]byte(`{"@context": {"@vocab": "http://schema.org/"}}`))
	}))
	defer server.Close()

	p := NewParser(fetch.NewHTTPFetcher(nil, "rdf2rss-test", 5*time.Second))
	doc := remoteContextDoc(server.URL + "/context.jsonld")

	for i := 0; i < 2; i++ {
		triples, err := p.Run(context.Background(), doc, FormatJSONLD, "https://example.org/blog/p3.jsonld")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(storeOf(triples).Subjects(graph.Type, graph.BlogPosting)) != 1 {
			t.Errorf("Expected one posting, got %v", triples)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("Expected the context to be fetched once, got %d", hits.Load())
	}
	if gotUserAgent != "rdf2rss-test" {
		t.Errorf("Expected user agent to be sent, got '%s'", gotUserAgent)
	}
}

func TestParser_SlowRemoteContextTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
			return
		}
		w.Write([]byte(`{"@context": {"@vocab": "http://schema.org/"}}`))
	}))
	defer server.Close()

	p := NewParser(fetch.NewHTTPFetcher(nil, "rdf2rss-test", 500*time.Millisecond))

	start := time.Now()
	_, err := p.Run(context.Background(), remoteContextDoc(server.URL+"/context.jsonld"), FormatJSONLD, "https://example.org/doc")
	if err == nil {
		t.Fatal("Expected an error for a context that never arrives")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected the context lookup to give up quickly, took %v", elapsed)
	}
}

func TestParser_RemoteContextFollowsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewParser(nil).Run(ctx, remoteContextDoc(server.URL+"/context.jsonld"), FormatJSONLD, "https://example.org/doc")
	if err == nil {
		t.Fatal("Expected an error after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected cancellation to stop the lookup, took %v", elapsed)
	}
}
