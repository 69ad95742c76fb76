package parser

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"

	"github.com/knakk/rdf"

	"github.com/lysyi3m/rdf2rss/app/fetch"
	"github.com/lysyi3m/rdf2rss/app/graph"
)

// Parser turns serialized RDF into triples. Blank node labels are scoped to the
// document they were read from so that documents merged into one store never
// share blank nodes, while re-reading the same document yields identical
// triples.
type Parser struct {
	contexts *contextCache
}

// NewParser returns a parser that resolves remote JSON-LD contexts through
// fetcher. A nil fetcher uses a default HTTP fetcher.
func NewParser(fetcher fetch.Fetcher) *Parser {
	if fetcher == nil {
		fetcher = fetch.NewHTTPFetcher(nil, "", 0)
	}
	return &Parser{
		contexts: newContextCache(fetcher),
	}
}

// Run parses data as format. ctx bounds any remote context lookups.
func (p *Parser) Run(ctx context.Context, data []byte, format Format, base string) ([]graph.Triple, error) {
	var (
		triples []graph.Triple
		err     error
	)

	switch format {
	case FormatTurtle:
		triples, err = decodeTriples(data, rdf.Turtle)
	case FormatNTriples:
		triples, err = decodeTriples(data, rdf.NTriples)
	case FormatRDFXML:
		triples, err = decodeTriples(data, rdf.RDFXML)
	case FormatNQuads:
		triples, err = decodeQuads(data)
	case FormatJSONLD:
		triples, err = p.parseJSONLD(ctx, data, base)
	case FormatRDFa:
		triples, err = p.parseHTML(ctx, data, base)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, &ParseError{URL: base, Format: format, Err: err}
	}

	return scopeBlankNodes(resolveRelative(triples, base), base), nil
}

// resolveRelative resolves IRIs left relative by the decoder against the
// document location.
func resolveRelative(triples []graph.Triple, base string) []graph.Triple {
	if base == "" {
		return triples
	}

	resolve := func(t graph.Term) graph.Term {
		if !t.IsIRI() {
			return t
		}
		if u, err := url.Parse(t.Value); err == nil && u.IsAbs() {
			return t
		}
		return graph.NewIRI(resolveIRI(base, t.Value))
	}

	for i, t := range triples {
		triples[i] = graph.Triple{
			Subject:   resolve(t.Subject),
			Predicate: resolve(t.Predicate),
			Object:    resolve(t.Object),
		}
	}
	return triples
}

func decodeTriples(data []byte, format rdf.Format) ([]graph.Triple, error) {
	dec := rdf.NewTripleDecoder(bytes.NewReader(data), format)

	var triples []graph.Triple
	for {
		t, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		triples = append(triples, fromRDFTriple(t))
	}
	return triples, nil
}

// decodeQuads reads N-Quads into the default graph. Graph names are dropped.
func decodeQuads(data []byte) ([]graph.Triple, error) {
	dec := rdf.NewQuadDecoder(bytes.NewReader(data), rdf.NQuads)

	var triples []graph.Triple
	for {
		q, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		triples = append(triples, fromRDFTriple(q.Triple))
	}
	return triples, nil
}

func fromRDFTriple(t rdf.Triple) graph.Triple {
	return graph.Triple{
		Subject:   fromRDFTerm(t.Subj),
		Predicate: fromRDFTerm(t.Pred),
		Object:    fromRDFTerm(t.Obj),
	}
}

func fromRDFTerm(t rdf.Term) graph.Term {
	switch v := t.(type) {
	case rdf.IRI:
		return graph.NewIRI(v.String())
	case rdf.Blank:
		return graph.NewBlank(v.String())
	case rdf.Literal:
		return graph.NewLiteral(v.String(), v.DataType.String(), v.Lang())
	default:
		return graph.NewLiteral(t.String(), "", "")
	}
}

func scopeBlankNodes(triples []graph.Triple, base string) []graph.Triple {
	sum := sha256.Sum256([]byte(base))
	prefix := "d" + hex.EncodeToString(sum[:4]) + "_"

	scope := func(t graph.Term) graph.Term {
		if t.IsBlank() {
			t.Value = prefix + t.Value
		}
		return t
	}

	scoped := make([]graph.Triple, len(triples))
	for i, t := range triples {
		scoped[i] = graph.Triple{
			Subject:   scope(t.Subject),
			Predicate: t.Predicate,
			Object:    scope(t.Object),
		}
	}
	return scoped
}
