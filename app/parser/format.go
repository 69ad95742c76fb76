package parser

import (
	"net/url"
	"path"
	"strings"
)

// directoryIndex is the document a directory URI is assumed to serve when
// guessing its format.
const directoryIndex = "index.html"

var extensionFormats = map[string]Format{
	"rdf":      FormatRDFXML,
	"owl":      FormatRDFXML,
	"xml":      FormatRDFXML,
	"ttl":      FormatTurtle,
	"turtle":   FormatTurtle,
	"n3":       FormatTurtle,
	"nt":       FormatNTriples,
	"ntriples": FormatNTriples,
	"nq":       FormatNQuads,
	"nquads":   FormatNQuads,
	"jsonld":   FormatJSONLD,
	"json":     FormatJSONLD,
	"html":     FormatRDFa,
	"htm":      FormatRDFa,
	"xhtml":    FormatRDFa,
	"svg":      FormatRDFa,
}

var mediaTypeFormats = map[string]Format{
	"text/turtle":           FormatTurtle,
	"application/x-turtle":  FormatTurtle,
	"text/n3":               FormatTurtle,
	"application/n-triples": FormatNTriples,
	"application/n-quads":   FormatNQuads,
	"application/rdf+xml":   FormatRDFXML,
	"application/ld+json":   FormatJSONLD,
	"application/json":      FormatJSONLD,
	"text/html":             FormatRDFa,
	"application/xhtml+xml": FormatRDFa,
	"image/svg+xml":         FormatRDFa,
}

// GuessFormat infers a format from the shape of a resource identifier. A
// directory-like identifier is treated as naming its index.html.
func GuessFormat(uri string) Format {
	p := uri
	if u, err := url.Parse(uri); err == nil {
		p = u.Path
	}

	if p == "" || strings.HasSuffix(p, "/") {
		p += directoryIndex
	}

	ext := strings.TrimPrefix(path.Ext(p), ".")
	return extensionFormats[strings.ToLower(ext)]
}

// FormatForMediaType maps a response media type to a format.
func FormatForMediaType(mediaType string) Format {
	return mediaTypeFormats[strings.ToLower(strings.TrimSpace(mediaType))]
}
