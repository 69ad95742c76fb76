package feed

import (
	"slices"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run reports whether a posting tagged with keywords passes the keyword
// filter. An empty filter keyword lets every posting through.
func (f *Filterer) Run(keywords []string, keyword string) bool {
	if keyword == "" {
		return true
	}
	return slices.Contains(keywords, keyword)
}
