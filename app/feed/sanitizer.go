package feed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/lysyi3m/rdf2rss/app/fetch"
)

const noiseSelector = "footer, header, link, meta"

var (
	rdfaAttributes  = []string{"property", "resource", "typeof"}
	scopeStrategies = []scopeStrategy{
		scopeByResource,
		scopeByArticle,
	}
)

// scopeStrategy picks the part of a posting page that holds its content.
type scopeStrategy func(doc *goquery.Document, postingURI string) *goquery.Selection

func scopeByResource(doc *goquery.Document, postingURI string) *goquery.Selection {
	return doc.Find("[resource]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("resource", "") == postingURI
	}).First()
}

func scopeByArticle(doc *goquery.Document, _ string) *goquery.Selection {
	return doc.Find("article").First()
}

// Sanitizer extracts the content of a posting page for use as an item
// description.
type Sanitizer struct {
	fetcher     fetch.Fetcher
	readability bool
	policy      *bluemonday.Policy
}

func NewSanitizer(fetcher fetch.Fetcher, useReadability bool, sanitizePolicy string) *Sanitizer {
	s := &Sanitizer{
		fetcher:     fetcher,
		readability: useReadability,
	}
	if sanitizePolicy == PolicyUGC {
		s.policy = bluemonday.UGCPolicy()
	}
	return s
}

// Run returns the cleaned markup of the posting page, or false when the page
// could not be fetched or yielded nothing.
func (s *Sanitizer) Run(ctx context.Context, postingURI string) (string, bool) {
	resp, err := s.fetcher.Fetch(ctx, postingURI, fetch.AcceptHTML)
	if err != nil {
		slog.Debug("Posting content unavailable", "url", postingURI, "error", err)
		return "", false
	}

	var content string
	if s.readability {
		content, err = s.extractReadable(resp.Body, postingURI)
	} else {
		content, err = s.extractScoped(resp.Body, postingURI)
	}
	if err != nil {
		slog.Debug("Posting content extraction failed", "url", postingURI, "error", err)
		return "", false
	}

	if s.policy != nil {
		content = s.policy.Sanitize(content)
	}

	slog.Debug("Posting content extracted", "url", postingURI, "content_length", len(content))

	return content, true
}

func (s *Sanitizer) extractScoped(data []byte, postingURI string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	scope := doc.Selection
	for _, strategy := range scopeStrategies {
		if sel := strategy(doc, postingURI); sel.Length() > 0 {
			scope = sel
			break
		}
	}

	cleanScope(scope, postingURI)

	return goquery.OuterHtml(scope)
}

func (s *Sanitizer) extractReadable(data []byte, postingURI string) (string, error) {
	pageURL, err := url.Parse(postingURI)
	if err != nil {
		return "", fmt.Errorf("invalid posting URL: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability extraction failed: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return "", fmt.Errorf("readability extracted no content")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	body := doc.Find("body")
	cleanScope(body, postingURI)

	return body.Html()
}

// cleanScope drops page chrome and RDFa annotations from scope and makes
// every link absolute.
func cleanScope(scope *goquery.Selection, postingURI string) {
	scope.Find(noiseSelector).Remove()

	for _, attr := range rdfaAttributes {
		scope.RemoveAttr(attr)
		scope.Find("[" + attr + "]").RemoveAttr(attr)
	}

	base, err := url.Parse(postingURI)
	if err != nil {
		return
	}
	scope.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		ref, err := url.Parse(strings.TrimSpace(a.AttrOr("href", "")))
		if err != nil {
			return
		}
		a.SetAttr("href", base.ResolveReference(ref).String())
	})
}
