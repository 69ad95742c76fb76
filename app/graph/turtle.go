package graph

import (
	"fmt"
	"io"

	"github.com/knakk/rdf"
)

// WriteTurtle serializes every triple of the store in Turtle notation.
func (s *Store) WriteTurtle(w io.Writer) error {
	encoded := make([]rdf.Triple, 0, len(s.triples))
	for _, t := range s.triples {
		triple, err := toRDFTriple(t)
		if err != nil {
			return fmt.Errorf("failed to convert %s: %w", t, err)
		}
		encoded = append(encoded, triple)
	}

	enc := rdf.NewTripleEncoder(w, rdf.Turtle)
	if err := enc.EncodeAll(encoded); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return enc.Close()
}

func toRDFTriple(t Triple) (rdf.Triple, error) {
	subj, err := toRDFTerm(t.Subject)
	if err != nil {
		return rdf.Triple{}, err
	}
	pred, err := toRDFTerm(t.Predicate)
	if err != nil {
		return rdf.Triple{}, err
	}
	obj, err := toRDFTerm(t.Object)
	if err != nil {
		return rdf.Triple{}, err
	}

	s, ok := subj.(rdf.Subject)
	if !ok {
		return rdf.Triple{}, fmt.Errorf("%s cannot be a subject", t.Subject)
	}
	p, ok := pred.(rdf.Predicate)
	if !ok {
		return rdf.Triple{}, fmt.Errorf("%s cannot be a predicate", t.Predicate)
	}
	o, ok := obj.(rdf.Object)
	if !ok {
		return rdf.Triple{}, fmt.Errorf("%s cannot be an object", t.Object)
	}

	return rdf.Triple{Subj: s, Pred: p, Obj: o}, nil
}

func toRDFTerm(t Term) (rdf.Term, error) {
	switch t.Kind {
	case KindIRI:
		iri, err := rdf.NewIRI(t.Value)
		if err != nil {
			return nil, err
		}
		return iri, nil
	case KindBlank:
		blank, err := rdf.NewBlank(t.Value)
		if err != nil {
			return nil, err
		}
		return blank, nil
	}

	if t.Lang != "" {
		lit, err := rdf.NewLangLiteral(t.Value, t.Lang)
		if err != nil {
			return nil, err
		}
		return lit, nil
	}

	datatype := t.Datatype
	if datatype == "" {
		datatype = XSDString
	}
	dt, err := rdf.NewIRI(datatype)
	if err != nil {
		return nil, err
	}
	return rdf.NewTypedLiteral(t.Value, dt), nil
}
