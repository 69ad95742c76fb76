package feed

import (
	"fmt"

	"github.com/gorilla/feeds"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders f as an RSS 2.0, Atom or JSON Feed document. An empty format
// means RSS.
func (g *Generator) Run(f *Feed, format string) (string, error) {
	doc := g.toFeed(f)

	var (
		out string
		err error
	)
	switch format {
	case "", FormatRSS:
		out, err = doc.ToRss()
	case FormatAtom:
		out, err = doc.ToAtom()
	case FormatJSON:
		out, err = doc.ToJSON()
	default:
		return "", fmt.Errorf("unknown feed format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render %s feed: %w", format, err)
	}

	return out, nil
}

func (g *Generator) toFeed(f *Feed) *feeds.Feed {
	doc := &feeds.Feed{
		Title:       f.Title,
		Link:        &feeds.Link{Href: f.Link},
		Description: f.Description,
		Id:          f.Link,
		Updated:     f.BuiltAt,
	}

	for _, item := range f.Items {
		entry := &feeds.Item{
			Title:       item.Title,
			Link:        &feeds.Link{Href: item.Link},
			Id:          item.GUID,
			Description: item.Description,
		}
		if item.PublishedAt != nil {
			entry.Created = *item.PublishedAt
		}
		if item.Author != "" {
			entry.Author = &feeds.Author{Name: item.Author}
		}
		doc.Items = append(doc.Items, entry)
	}

	return doc
}

// ContentType is the media type a document rendered in format is served with.
func ContentType(format string) string {
	switch format {
	case FormatAtom:
		return "application/atom+xml; charset=utf-8"
	case FormatJSON:
		return "application/feed+json; charset=utf-8"
	default:
		return "application/rss+xml; charset=utf-8"
	}
}

func ValidFormat(format string) bool {
	switch format {
	case "", FormatRSS, FormatAtom, FormatJSON:
		return true
	}
	return false
}
