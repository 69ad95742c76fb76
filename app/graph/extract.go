package graph

import (
	"strconv"
	"strings"
	"time"
)

type ValueKind int

const (
	ValueText ValueKind = iota
	ValueTime
	ValueInteger
	ValueDecimal
	ValueBoolean
	ValueResource
	ValueLiteral
)

// Value is a normalized scalar read from the graph. Text holds the cleaned
// text for ValueText and the lexical form for every other kind.
type Value struct {
	Kind  ValueKind
	Text  string
	Time  time.Time
	Int   int64
	Float float64
	Bool  bool
	Term  Term
}

func (v Value) String() string {
	if v.Kind == ValueTime {
		return v.Time.Format(time.RFC3339)
	}
	return v.Text
}

type Outcome int

const (
	Absent Outcome = iota
	Present
	Ambiguous
)

// Result is the outcome of a predicate path lookup: a value, nothing, or an
// ambiguity error naming the step that matched more than one object.
type Result struct {
	Outcome Outcome
	Value   Value
	Err     error
}

func (r Result) Ok() bool {
	return r.Outcome == Present
}

// Extract follows path hop by hop from start. Every step must match at most
// one object; the final object is normalized with Cleanup.
func Extract(s *Store, start Term, path ...Term) Result {
	current := start
	for _, predicate := range path {
		next, ok, err := s.Value(current, predicate)
		if err != nil {
			return Result{Outcome: Ambiguous, Err: err}
		}
		if !ok {
			return Result{Outcome: Absent}
		}
		current = next
	}
	return Result{Outcome: Present, Value: Cleanup(current)}
}

// Values returns every object of subject/predicate, normalized.
func Values(s *Store, subject, predicate Term) []Value {
	objects := s.Objects(subject, predicate)
	values := make([]Value, 0, len(objects))
	for _, object := range objects {
		values = append(values, Cleanup(object))
	}
	return values
}

// CommaSeparatedValues treats each value of subject/predicate as a comma
// separated list and returns the trimmed pieces of all of them.
func CommaSeparatedValues(s *Store, subject, predicate Term) []string {
	var tags []string
	for _, value := range Values(s, subject, predicate) {
		for _, piece := range strings.Split(value.Text, ",") {
			tags = append(tags, strings.TrimSpace(piece))
		}
	}
	return tags
}

// Cleanup converts a term to its normalized value: dates become midnight
// timestamps, text has whitespace collapsed and trimmed, anything else is
// carried through as is.
func Cleanup(t Term) Value {
	switch t.Kind {
	case KindIRI:
		return Value{Kind: ValueResource, Text: t.Value, Term: t}
	case KindBlank:
		return Value{Kind: ValueResource, Text: "_:" + t.Value, Term: t}
	}

	lexical := t.Value
	raw := Value{Kind: ValueLiteral, Text: lexical, Term: t}

	switch t.Datatype {
	case "", XSDString, RDFLangString:
		return Value{Kind: ValueText, Text: CleanText(lexical), Term: t}
	case XSDDate:
		d, ok := parseDate(lexical)
		if !ok {
			return raw
		}
		return Value{Kind: ValueTime, Text: lexical, Time: d, Term: t}
	case XSDDateTime:
		dt, ok := parseDateTime(lexical)
		if !ok {
			return raw
		}
		return Value{Kind: ValueTime, Text: lexical, Time: dt, Term: t}
	case XSDInteger, XSDInt, XSDLong:
		i, err := strconv.ParseInt(strings.TrimSpace(lexical), 10, 64)
		if err != nil {
			return raw
		}
		return Value{Kind: ValueInteger, Text: lexical, Int: i, Term: t}
	case XSDDecimal, XSDDouble, XSDFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(lexical), 64)
		if err != nil {
			return raw
		}
		return Value{Kind: ValueDecimal, Text: lexical, Float: f, Term: t}
	case XSDBoolean:
		switch strings.TrimSpace(lexical) {
		case "true", "1":
			return Value{Kind: ValueBoolean, Text: lexical, Bool: true, Term: t}
		case "false", "0":
			return Value{Kind: ValueBoolean, Text: lexical, Bool: false, Term: t}
		}
		return raw
	default:
		return raw
	}
}

// CleanText collapses every run of whitespace to one space and trims.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02Z07:00",
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02T15:04Z07:00",
}

func parseDate(lexical string) (time.Time, bool) {
	lexical = strings.TrimSpace(lexical)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, lexical); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseDateTime(lexical string) (time.Time, bool) {
	lexical = strings.TrimSpace(lexical)
	for _, layout := range dateTimeLayouts {
		if dt, err := time.Parse(layout, lexical); err == nil {
			return dt, true
		}
	}
	return time.Time{}, false
}
