package parser

import (
	"errors"
	"fmt"
)

type Format string

const (
	FormatUnknown  Format = ""
	FormatRDFa     Format = "rdfa"
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "nt"
	FormatNQuads   Format = "nquads"
	FormatRDFXML   Format = "xml"
	FormatJSONLD   Format = "json-ld"
)

// ParseError reports content that could not be parsed under the guessed (or
// missing) format.
type ParseError struct {
	URL    string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format == FormatUnknown {
		return fmt.Sprintf("failed to parse %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to parse %s as %s: %v", e.URL, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}
