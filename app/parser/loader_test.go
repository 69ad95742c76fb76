package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lysyi3m/rdf2rss/app/fetch"
	"github.com/lysyi3m/rdf2rss/app/graph"
)

func newTestLoader() *Loader {
	return NewLoader(fetch.NewHTTPFetcher(nil, "rdf2rss-test", 5*time.Second), NewParser(nil))
}

func TestLoader_DirectoryIsReadAsRDFa(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(rdfaBlog))
	}))
	defer server.Close()

	store := graph.NewStore()
	added, err := newTestLoader().Load(context.Background(), store, server.URL+"/blog/")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if added == 0 {
		t.Error("Expected triples to be added")
	}
	if gotAccept != fetch.AcceptHTML {
		t.Errorf("Expected Accept %q, got %q", fetch.AcceptHTML, gotAccept)
	}
	if len(store.Subjects(graph.Type, graph.BlogPosting)) != 3 {
		t.Errorf("Expected 3 postings, got %v", store.Subjects(graph.Type, graph.BlogPosting))
	}
}

func TestLoader_ContentTypeFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/turtle; charset=utf-8")
		w.Write([]byte(turtleBlog))
	}))
	defer server.Close()

	store := graph.NewStore()
	if _, err := newTestLoader().Load(context.Background(), store, server.URL+"/feed"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(store.Subjects(graph.Type, graph.BlogPosting)) != 1 {
		t.Errorf("Expected 1 posting, got %d triples", store.Len())
	}
}

func TestLoader_UnknownFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("binary"))
	}))
	defer server.Close()

	_, err := newTestLoader().Load(context.Background(), graph.NewStore(), server.URL+"/feed")
	if !IsParseError(err) {
		t.Errorf("Expected ParseError, got %v", err)
	}
}

func TestLoader_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestLoader().Load(context.Background(), graph.NewStore(), server.URL+"/posts.ttl")
	if !fetch.IsFetchError(err) {
		t.Errorf("Expected FetchError, got %v", err)
	}
}

func TestLoader_ReloadIsIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(turtleBlog))
	}))
	defer server.Close()

	loader := newTestLoader()
	store := graph.NewStore()
	uri := server.URL + "/posts.ttl"

	first, err := loader.Load(context.Background(), store, uri)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	size := store.Len()

	second, err := loader.Load(context.Background(), store, uri)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if first == 0 {
		t.Error("Expected first load to add triples")
	}
	if second != 0 {
		t.Errorf("Expected second load to add nothing, got %d", second)
	}
	if store.Len() != size {
		t.Errorf("Expected store size %d, got %d", size, store.Len())
	}
}
