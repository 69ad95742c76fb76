package graph

import (
	"strconv"
	"strings"
)

type TermKind int

const (
	KindIRI TermKind = iota
	KindBlank
	KindLiteral
)

// Term is a node or predicate of the graph. Terms are comparable and are used
// directly as map keys by the Store.
type Term struct {
	Kind     TermKind
	Value    string // IRI, blank node label or literal lexical form
	Datatype string // literal datatype IRI, empty for plain literals
	Lang     string // literal language tag
}

func NewIRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

func NewBlank(label string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(label, "_:")}
}

func NewLiteral(lexical, datatype, lang string) Term {
	if lang != "" || datatype == RDFLangString {
		return Term{Kind: KindLiteral, Value: lexical, Lang: strings.ToLower(lang)}
	}
	if datatype == XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: lexical, Datatype: datatype}
}

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// String renders the term in N-Triples notation.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		s := strconv.Quote(t.Value)
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	}
}

type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}
