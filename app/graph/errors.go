package graph

import (
	"errors"
	"fmt"
)

// AmbiguousValueError reports a predicate step that found more than one
// object where at most one was expected.
type AmbiguousValueError struct {
	Subject   Term
	Predicate Term
	Count     int
}

func (e *AmbiguousValueError) Error() string {
	return fmt.Sprintf("expected at most one value for %s %s, found %d", e.Subject, e.Predicate, e.Count)
}

func IsAmbiguous(err error) bool {
	var ambiguous *AmbiguousValueError
	return errors.As(err, &ambiguous)
}
