package feed

import (
	"context"
	"strings"
	"testing"

	"github.com/lysyi3m/rdf2rss/app/fetch"
	"github.com/lysyi3m/rdf2rss/app/graph"
)

const postURL = "https://example.org/blog/p1.html"

func postingGraph(extra ...graph.Triple) map[string][]graph.Triple {
	triples := append([]graph.Triple{
		triple(postURL, graph.RDFType, graph.BlogPosting),
		triple(postURL, graph.SchemaName, text("Hello")),
		triple(postURL, graph.SchemaDatePublished, date("2020-01-01")),
		triple(postURL, graph.SchemaKeywords, text("a, b , c")),
	}, extra...)
	return map[string][]graph.Triple{postURL: triples}
}

func TestAssembler_Run(t *testing.T) {
	loader := &fakeLoader{graphs: postingGraph(
		triple(postURL, graph.SchemaAuthor, graph.NewIRI("https://example.org/#ann")),
		triple("https://example.org/#ann", graph.SchemaEmail, graph.NewIRI("mailto:ann@example.org")),
	)}
	assembler := NewAssembler(loader, &fakeContent{})

	item, err := assembler.Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if item == nil {
		t.Fatal("Expected an item")
	}

	if item.Title != "Hello" {
		t.Errorf("Expected title 'Hello', got '%s'", item.Title)
	}
	if item.Link != postURL || item.GUID != postURL {
		t.Errorf("Expected link and guid %s, got %s and %s", postURL, item.Link, item.GUID)
	}
	if item.Description != "" {
		t.Errorf("Expected no description, got '%s'", item.Description)
	}
	if item.PublishedAt == nil || !item.PublishedAt.Equal(*day(2020, 1, 1)) {
		t.Errorf("Expected 2020-01-01T00:00:00, got %v", item.PublishedAt)
	}
	if item.Author != "ann@example.org" {
		t.Errorf("Expected author 'ann@example.org', got '%s'", item.Author)
	}
}

func TestAssembler_KeywordFilter(t *testing.T) {
	tests := []struct {
		keyword  string
		included bool
	}{
		{"b", true},
		{"d", false},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assembler := NewAssembler(&fakeLoader{graphs: postingGraph()}, nil)

			item, err := assembler.Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{Keyword: tt.keyword})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if (item != nil) != tt.included {
				t.Errorf("Expected included=%v for keyword %q, got %v", tt.included, tt.keyword, item)
			}
		})
	}
}

func TestAssembler_ContentFallback(t *testing.T) {
	content := &fakeContent{content: map[string]string{postURL: "<article>Body</article>"}}

	item, err := NewAssembler(&fakeLoader{graphs: postingGraph()}, content).
		Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{ContentFallback: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if item.Description != "<article>Body</article>" {
		t.Errorf("Expected content fallback description, got '%s'", item.Description)
	}

	// Fallback disabled: content source is never asked
	content.calls = 0
	item, err = NewAssembler(&fakeLoader{graphs: postingGraph()}, content).
		Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if item.Description != "" || content.calls != 0 {
		t.Errorf("Expected no fallback, got description '%s' after %d calls", item.Description, content.calls)
	}
}

func TestAssembler_DescriptionWinsOverFallback(t *testing.T) {
	content := &fakeContent{content: map[string]string{postURL: "<p>page</p>"}}
	loader := &fakeLoader{graphs: postingGraph(triple(postURL, graph.SchemaDescription, text("Summary")))}

	item, err := NewAssembler(loader, content).
		Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{ContentFallback: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if item.Description != "Summary" || content.calls != 0 {
		t.Errorf("Expected graph description without fallback, got '%s' after %d calls", item.Description, content.calls)
	}
}

func TestAssembler_BlankDescriptionSkipsFallback(t *testing.T) {
	content := &fakeContent{content: map[string]string{postURL: "<p>page</p>"}}
	loader := &fakeLoader{graphs: postingGraph(triple(postURL, graph.SchemaDescription, text("   ")))}

	item, err := NewAssembler(loader, content).
		Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{ContentFallback: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if content.calls != 0 {
		t.Errorf("Expected no content fallback for a present description, got %d calls", content.calls)
	}
	if strings.TrimSpace(item.Description) != "" {
		t.Errorf("Expected blank description, got '%s'", item.Description)
	}
}

func TestAssembler_FallbackUnavailable(t *testing.T) {
	item, err := NewAssembler(&fakeLoader{graphs: postingGraph()}, &fakeContent{}).
		Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{ContentFallback: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if item.Description != "" {
		t.Errorf("Expected absent description, got '%s'", item.Description)
	}
}

func TestAssembler_NonTemporalDateIsAbsent(t *testing.T) {
	warnings, restore := captureWarnings()
	defer restore()

	loader := &fakeLoader{graphs: map[string][]graph.Triple{postURL: {
		triple(postURL, graph.SchemaDatePublished, text("last week")),
	}}}

	item, err := NewAssembler(loader, nil).Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if item.PublishedAt != nil {
		t.Errorf("Expected absent publish date, got %v", item.PublishedAt)
	}
	if warnings.count("Ignoring non-temporal schema:datePublished") != 1 {
		t.Error("Expected one warning for the non-temporal date")
	}
}

func TestAssembler_AmbiguousName(t *testing.T) {
	loader := &fakeLoader{graphs: postingGraph(triple(postURL, graph.SchemaName, text("Hi")))}

	_, err := NewAssembler(loader, nil).Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{})
	if !graph.IsAmbiguous(err) {
		t.Errorf("Expected ambiguity error, got %v", err)
	}
}

func TestAssembler_LoadFailure(t *testing.T) {
	_, err := NewAssembler(&fakeLoader{}, nil).Run(context.Background(), graph.NewStore(), graph.NewIRI(postURL), Options{})
	if !fetch.IsFetchError(err) {
		t.Errorf("Expected FetchError, got %v", err)
	}
}
