package parser

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/piprate/json-gold/ld"

	"github.com/lysyi3m/rdf2rss/app/graph"
)

const defaultGraph = "@default"

func (p *Parser) parseJSONLD(ctx context.Context, data []byte, base string) ([]graph.Triple, error) {
	doc, err := ld.DocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	opts := ld.NewJsonLdOptions(base)
	opts.DocumentLoader = p.contexts.bind(ctx)

	out, err := ld.NewJsonLdProcessor().ToRDF(doc, opts)
	if err != nil {
		return nil, err
	}

	dataset, ok := out.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("unexpected JSON-LD result %T", out)
	}

	// Named graphs are merged into the default graph in a stable order.
	names := make([]string, 0, len(dataset.Graphs))
	for name := range dataset.Graphs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == defaultGraph || names[j] == defaultGraph {
			return names[i] == defaultGraph
		}
		return names[i] < names[j]
	})

	var triples []graph.Triple
	for _, name := range names {
		for _, q := range dataset.Graphs[name] {
			s, okS := fromLDNode(q.Subject)
			pr, okP := fromLDNode(q.Predicate)
			o, okO := fromLDNode(q.Object)
			if !okS || !okP || !okO {
				continue
			}
			triples = append(triples, graph.Triple{Subject: s, Predicate: pr, Object: o})
		}
	}
	return triples, nil
}

func fromLDNode(n ld.Node) (graph.Term, bool) {
	switch v := n.(type) {
	case *ld.IRI:
		return graph.NewIRI(v.Value), true
	case *ld.BlankNode:
		return graph.NewBlank(v.Attribute), true
	case *ld.Literal:
		return graph.NewLiteral(v.Value, v.Datatype, v.Language), true
	default:
		return graph.Term{}, false
	}
}
