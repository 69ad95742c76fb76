package graph

import "strings"

type pair [2]Term

// Store is an append-only triple set. A pipeline run owns one Store and
// passes it by reference to every loading step; triples already present are
// ignored, so merging the same document twice does not grow the store.
type Store struct {
	triples []Triple
	seen    map[Triple]struct{}
	bySP    map[pair][]Term
	byPO    map[pair][]Term
}

func NewStore() *Store {
	return &Store{
		seen: make(map[Triple]struct{}),
		bySP: make(map[pair][]Term),
		byPO: make(map[pair][]Term),
	}
}

// Add inserts a triple and reports whether it was new.
func (s *Store) Add(t Triple) bool {
	t = normalizeTriple(t)
	if _, ok := s.seen[t]; ok {
		return false
	}
	s.seen[t] = struct{}{}
	s.triples = append(s.triples, t)

	sp := pair{t.Subject, t.Predicate}
	s.bySP[sp] = append(s.bySP[sp], t.Object)

	po := pair{t.Predicate, t.Object}
	s.byPO[po] = append(s.byPO[po], t.Subject)

	return true
}

// Merge adds every triple and returns how many were new.
func (s *Store) Merge(triples []Triple) int {
	added := 0
	for _, t := range triples {
		if s.Add(t) {
			added++
		}
	}
	return added
}

func (s *Store) Len() int {
	return len(s.triples)
}

// Triples returns a copy of all triples in insertion order.
func (s *Store) Triples() []Triple {
	out := make([]Triple, len(s.triples))
	copy(out, s.triples)
	return out
}

// Objects returns the objects of subject/predicate in insertion order.
func (s *Store) Objects(subject, predicate Term) []Term {
	objects := s.bySP[pair{normalizeTerm(subject), normalizeTerm(predicate)}]
	out := make([]Term, len(objects))
	copy(out, objects)
	return out
}

// Subjects returns the subjects having predicate/object, in insertion order.
func (s *Store) Subjects(predicate, object Term) []Term {
	subjects := s.byPO[pair{normalizeTerm(predicate), normalizeTerm(object)}]
	out := make([]Term, len(subjects))
	copy(out, subjects)
	return out
}

// Value returns the single object of subject/predicate. The boolean is false
// when there is none; more than one object is an *AmbiguousValueError.
func (s *Store) Value(subject, predicate Term) (Term, bool, error) {
	objects := s.bySP[pair{normalizeTerm(subject), normalizeTerm(predicate)}]
	switch len(objects) {
	case 0:
		return Term{}, false, nil
	case 1:
		return objects[0], true, nil
	default:
		return Term{}, false, &AmbiguousValueError{Subject: subject, Predicate: predicate, Count: len(objects)}
	}
}

func normalizeTriple(t Triple) Triple {
	return Triple{
		Subject:   normalizeTerm(t.Subject),
		Predicate: normalizeTerm(t.Predicate),
		Object:    normalizeTerm(t.Object),
	}
}

func normalizeTerm(t Term) Term {
	if t.Kind == KindIRI && strings.HasPrefix(t.Value, SchemaSecureNamespace) {
		t.Value = SchemaNamespace + strings.TrimPrefix(t.Value, SchemaSecureNamespace)
	}
	return t
}
