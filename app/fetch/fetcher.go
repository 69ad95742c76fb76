package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

const defaultMaxBodySize = 32 << 20

const (
	AcceptGraph = "text/turtle, application/ld+json, application/rdf+xml;q=0.9, application/n-triples;q=0.9, application/xhtml+xml;q=0.8, text/html;q=0.8, */*;q=0.1"
	AcceptHTML  = "text/html, application/xhtml+xml;q=0.9, */*;q=0.1"
)

type Response struct {
	URL         string // final URL after redirects
	StatusCode  int
	ContentType string // media type without parameters
	Body        []byte // decoded to UTF-8 from the declared or sniffed charset
}

type Fetcher interface {
	Fetch(ctx context.Context, url string, accept string) (*Response, error)
}

// FetchError reports a transport failure or a non-success status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

type HTTPFetcher struct {
	httpClient  *http.Client
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *HTTPFetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPFetcher{
		httpClient:  httpClient,
		userAgent:   userAgent,
		timeout:     timeout,
		maxBodySize: defaultMaxBodySize,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string, accept string) (*Response, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP error: %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if int64(len(data)) > f.maxBodySize {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("response body exceeds %d bytes", f.maxBodySize)}
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, declared := parseContentType(contentType)
	if isHTML(mediaType) {
		data = decodeHTML(data, contentType)
	} else {
		data = decodeCharset(data, declared)
	}

	slog.Debug("Fetched resource", "url", url, "status", resp.StatusCode, "content_type", mediaType, "bytes", len(data))

	return &Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: mediaType,
		Body:        data,
	}, nil
}

func parseContentType(header string) (string, string) {
	if header == "" {
		return "", ""
	}
	mediaType, params, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(header, ";", 2)[0])), ""
	}
	return mediaType, params["charset"]
}

func isHTML(mediaType string) bool {
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// decodeHTML picks the encoding from the BOM, the Content-Type header or a
// <meta> declaration in the first kilobyte, in that order. A guess never
// overrides a body that is already valid UTF-8.
func decodeHTML(data []byte, contentType string) []byte {
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(data)) {
		return data
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		slog.Debug("Failed to decode response charset, keeping raw bytes", "charset", name, "error", err)
		return data
	}
	return decoded
}

func decodeCharset(data []byte, label string) []byte {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == "utf-8" || label == "utf8" {
		return data
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		slog.Debug("Unknown response charset, keeping raw bytes", "charset", label)
		return data
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		slog.Debug("Failed to decode response charset, keeping raw bytes", "charset", label, "error", err)
		return data
	}
	return decoded
}
