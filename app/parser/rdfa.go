package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lysyi3m/rdf2rss/app/graph"
)

// initialPrefixes is the subset of the RDFa initial context that blog
// markup uses in practice.
var initialPrefixes = map[string]string{
	"cc":      "http://creativecommons.org/ns#",
	"dc":      "http://purl.org/dc/terms/",
	"dc11":    "http://purl.org/dc/elements/1.1/",
	"dcterms": "http://purl.org/dc/terms/",
	"foaf":    "http://xmlns.com/foaf/0.1/",
	"og":      "http://ogp.me/ns#",
	"owl":     "http://www.w3.org/2002/07/owl#",
	"rdf":     graph.RDFNamespace,
	"rdfs":    "http://www.w3.org/2000/01/rdf-schema#",
	"schema":  graph.SchemaNamespace,
	"sioc":    "http://rdfs.org/sioc/ns#",
	"skos":    "http://www.w3.org/2004/02/skos/core#",
	"xsd":     graph.XSDNamespace,
}

// parseHTML extracts RDFa 1.1 Lite annotations and embedded JSON-LD blocks.
func (p *Parser) parseHTML(ctx context.Context, data []byte, base string) ([]graph.Triple, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if href, ok := doc.Find("head base[href]").First().Attr("href"); ok {
		base = resolveIRI(base, href)
	}

	proc := &rdfaProcessor{base: base}
	for _, n := range doc.Nodes {
		proc.walk(n, rdfaContext{
			prefixes:     initialPrefixes,
			parentObject: graph.NewIRI(base),
		}, true)
	}

	triples := proc.triples
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		embedded, err := p.parseJSONLD(ctx, []byte(s.Text()), base)
		if err != nil {
			slog.Warn("Skipping invalid embedded JSON-LD", "url", base, "block", i, "error", err)
			return
		}
		// Each block numbers its blank nodes from zero.
		for _, t := range embedded {
			t.Subject = relabelBlank(t.Subject, fmt.Sprintf("ld%d_", i))
			t.Object = relabelBlank(t.Object, fmt.Sprintf("ld%d_", i))
			triples = append(triples, t)
		}
	})

	return triples, nil
}

func relabelBlank(t graph.Term, prefix string) graph.Term {
	if t.IsBlank() {
		t.Value = prefix + t.Value
	}
	return t
}

type rdfaContext struct {
	vocab        string
	prefixes     map[string]string
	lang         string
	parentObject graph.Term
}

type rdfaProcessor struct {
	base    string
	triples []graph.Triple
	bnodes  int
}

func (r *rdfaProcessor) emit(s, p, o graph.Term) {
	r.triples = append(r.triples, graph.Triple{Subject: s, Predicate: p, Object: o})
}

func (r *rdfaProcessor) newBlank() graph.Term {
	r.bnodes++
	return graph.NewBlank(fmt.Sprintf("rdfa%d", r.bnodes))
}

func (r *rdfaProcessor) walk(n *html.Node, ctx rdfaContext, isRoot bool) {
	if n.Type == html.DocumentNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c, ctx, isRoot)
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[strings.ToLower(a.Key)] = a.Val
	}

	local := ctx
	if v, ok := attrs["vocab"]; ok {
		local.vocab = strings.TrimSpace(v)
		if local.vocab != "" {
			local.vocab = resolveIRI(r.base, local.vocab)
		}
	}
	if v, ok := attrs["prefix"]; ok {
		local.prefixes = withPrefixes(local.prefixes, parsePrefixes(v))
	}
	for key, v := range attrs {
		if name, ok := strings.CutPrefix(key, "xmlns:"); ok {
			local.prefixes = withPrefixes(local.prefixes, map[string]string{name: v})
		}
	}
	if v, ok := attrs["lang"]; ok {
		local.lang = v
	}
	if v, ok := attrs["xml:lang"]; ok {
		local.lang = v
	}

	about, hasAbout := attrs["about"]
	resource, hasResource := attrs["resource"]
	href, hasHref := attrs["href"]
	src, hasSrc := attrs["src"]
	property, hasProperty := attrs["property"]
	typeOf, hasTypeOf := attrs["typeof"]
	_, hasContent := attrs["content"]
	_, hasDatatype := attrs["datatype"]

	var (
		newSubject    graph.Term
		typedResource graph.Term
		currentObject graph.Term
		hasTyped      bool
		hasObject     bool
		skip          bool
	)

	implicit := func() (graph.Term, bool) {
		switch {
		case isRoot:
			return graph.NewIRI(r.base), true
		case n.DataAtom == atom.Head || n.DataAtom == atom.Body:
			return ctx.parentObject, true
		}
		return graph.Term{}, false
	}

	if hasProperty && !hasContent && !hasDatatype {
		if hasAbout {
			newSubject = r.resolveResource(local, about)
		} else if t, ok := implicit(); ok {
			newSubject = t
		} else {
			newSubject = ctx.parentObject
		}

		if hasTypeOf {
			hasTyped = true
			switch {
			case hasAbout:
				typedResource = newSubject
			case isRoot:
				typedResource = newSubject
			default:
				switch {
				case hasResource:
					typedResource = r.resolveResource(local, resource)
				case hasHref:
					typedResource = graph.NewIRI(resolveIRI(r.base, href))
				case hasSrc:
					typedResource = graph.NewIRI(resolveIRI(r.base, src))
				default:
					typedResource = r.newBlank()
				}
				currentObject = typedResource
				hasObject = true
			}
		}
	} else {
		switch {
		case hasAbout:
			newSubject = r.resolveResource(local, about)
		case hasResource:
			newSubject = r.resolveResource(local, resource)
		case hasHref:
			newSubject = graph.NewIRI(resolveIRI(r.base, href))
		case hasSrc:
			newSubject = graph.NewIRI(resolveIRI(r.base, src))
		default:
			if t, ok := implicit(); ok {
				newSubject = t
			} else if hasTypeOf {
				newSubject = r.newBlank()
			} else {
				newSubject = ctx.parentObject
				if !hasProperty {
					skip = true
				}
			}
		}
		if hasTypeOf {
			hasTyped = true
			typedResource = newSubject
		}
	}

	if hasTyped {
		for _, name := range strings.Fields(typeOf) {
			if iri, ok := local.resolveTerm(name); ok {
				r.emit(typedResource, graph.Type, graph.NewIRI(iri))
			}
		}
	}

	if hasProperty {
		object := r.propertyValue(n, attrs, local, hasTyped && !hasAbout, typedResource)
		for _, name := range strings.Fields(property) {
			if iri, ok := local.resolveTerm(name); ok {
				r.emit(newSubject, graph.NewIRI(iri), object)
			}
		}
	}

	child := local
	if !skip {
		if hasObject {
			child.parentObject = currentObject
		} else {
			child.parentObject = newSubject
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c, child, false)
	}
}

func (r *rdfaProcessor) propertyValue(n *html.Node, attrs map[string]string, ctx rdfaContext, useTyped bool, typed graph.Term) graph.Term {
	content, hasContent := attrs["content"]
	datatype, hasDatatype := attrs["datatype"]

	if hasDatatype && strings.TrimSpace(datatype) != "" {
		dt, ok := ctx.resolveTerm(strings.TrimSpace(datatype))
		if !ok {
			dt = ""
		}
		if dt == graph.RDFXMLLiteral || dt == graph.RDFHTML {
			return graph.NewLiteral(innerHTML(n), dt, "")
		}
		if !hasContent {
			content = textContent(n)
		}
		if dt != "" {
			return graph.NewLiteral(content, dt, "")
		}
		return graph.NewLiteral(content, "", ctx.lang)
	}

	if hasDatatype || hasContent {
		if !hasContent {
			content = textContent(n)
		}
		return graph.NewLiteral(content, "", ctx.lang)
	}

	if n.DataAtom == atom.Time {
		value, ok := attrs["datetime"]
		if !ok {
			value = textContent(n)
		}
		value = strings.TrimSpace(value)
		return graph.NewLiteral(value, temporalDatatype(value), "")
	}

	if v, ok := attrs["resource"]; ok {
		return r.resolveResource(ctx, v)
	}
	if v, ok := attrs["href"]; ok {
		return graph.NewIRI(resolveIRI(r.base, v))
	}
	if v, ok := attrs["src"]; ok {
		return graph.NewIRI(resolveIRI(r.base, v))
	}
	if useTyped {
		return typed
	}

	return graph.NewLiteral(textContent(n), "", ctx.lang)
}

// resolveTerm expands a term, CURIE or absolute IRI used in typeof, property
// or datatype.
func (c rdfaContext) resolveTerm(value string) (string, bool) {
	if strings.HasPrefix(value, "_:") {
		return "", false
	}

	if i := strings.Index(value, ":"); i > 0 {
		prefix, reference := strings.ToLower(value[:i]), value[i+1:]
		if ns, ok := c.prefixes[prefix]; ok && !strings.HasPrefix(reference, "//") {
			return ns + reference, true
		}
		if u, err := url.Parse(value); err == nil && u.IsAbs() {
			return value, true
		}
		return "", false
	}

	if c.vocab != "" && value != "" {
		return c.vocab + value, true
	}
	return "", false
}

// resolveResource expands an about or resource value: a safe CURIE, a blank
// node, a CURIE or a (possibly relative) IRI.
func (r *rdfaProcessor) resolveResource(ctx rdfaContext, value string) graph.Term {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		value = value[1 : len(value)-1]
		if label, ok := strings.CutPrefix(value, "_:"); ok {
			return graph.NewBlank("rdfa_" + label)
		}
		if iri, ok := ctx.resolveTerm(value); ok {
			return graph.NewIRI(iri)
		}
		return graph.NewIRI(r.base)
	}

	if label, ok := strings.CutPrefix(value, "_:"); ok {
		return graph.NewBlank("rdfa_" + label)
	}

	if i := strings.Index(value, ":"); i > 0 {
		if ns, ok := ctx.prefixes[strings.ToLower(value[:i])]; ok && !strings.HasPrefix(value[i+1:], "//") {
			return graph.NewIRI(ns + value[i+1:])
		}
	}

	return graph.NewIRI(resolveIRI(r.base, value))
}

func parsePrefixes(value string) map[string]string {
	prefixes := make(map[string]string)
	fields := strings.Fields(value)
	for i := 0; i+1 < len(fields); i++ {
		name, ok := strings.CutSuffix(fields[i], ":")
		if !ok || name == "" {
			continue
		}
		prefixes[strings.ToLower(name)] = fields[i+1]
		i++
	}
	return prefixes
}

func withPrefixes(current, added map[string]string) map[string]string {
	merged := make(map[string]string, len(current)+len(added))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range added {
		merged[strings.ToLower(k)] = v
	}
	return merged
}

func resolveIRI(base, ref string) string {
	ref = strings.TrimSpace(ref)
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}

func temporalDatatype(value string) string {
	switch {
	case strings.HasPrefix(value, "P") || strings.HasPrefix(value, "-P"):
		return graph.XSDNamespace + "duration"
	case strings.Contains(value, "T"):
		return graph.XSDDateTime
	case len(value) == 4:
		return graph.XSDNamespace + "gYear"
	case len(value) == 7 && value[4] == '-':
		return graph.XSDNamespace + "gYearMonth"
	case len(value) >= 10 && value[4] == '-' && value[7] == '-':
		return graph.XSDDate
	case strings.Count(value, ":") >= 1:
		return graph.XSDNamespace + "time"
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return textContent(n)
		}
	}
	return buf.String()
}
