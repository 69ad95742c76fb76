package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lysyi3m/rdf2rss/app/database"
	"github.com/lysyi3m/rdf2rss/app/feed"
)

var _ database.FeedRepository = (*mockFeedRepository)(nil)

type mockFeedRepository struct {
	mu    sync.Mutex
	feeds map[string]*database.Feed
}

func newMockFeedRepository() *mockFeedRepository {
	return &mockFeedRepository{feeds: make(map[string]*database.Feed)}
}

func (m *mockFeedRepository) GetFeed(name string) (*database.Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.feeds[name]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (m *mockFeedRepository) GetFeeds() ([]database.Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var feeds []database.Feed
	for _, stored := range m.feeds {
		feeds = append(feeds, *stored)
	}
	return feeds, nil
}

func (m *mockFeedRepository) GetFeedCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.feeds), nil
}

func (m *mockFeedRepository) UpsertFeed(name, url, format string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.feeds[name]
	if !ok {
		stored = &database.Feed{Name: name}
		m.feeds[name] = stored
	}
	stored.URL = url
	stored.Format = format
	return nil
}

func (m *mockFeedRepository) StoreDocument(name, document string, itemCount int, builtAt, nextBuildAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.feeds[name]
	if !ok {
		return errors.New("not registered")
	}
	stored.Document = document
	stored.ItemCount = itemCount
	stored.BuiltAt = &builtAt
	stored.NextBuildAt = &nextBuildAt
	stored.LastError = ""
	return nil
}

func (m *mockFeedRepository) StoreFailure(name, lastError string, nextBuildAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.feeds[name]
	if !ok {
		return errors.New("not registered")
	}
	stored.LastError = lastError
	stored.NextBuildAt = &nextBuildAt
	return nil
}

type mockRenderer struct {
	mu       sync.Mutex
	document string
	items    int
	err      error
	calls    []feed.Options
	timeouts []time.Duration
}

func (m *mockRenderer) factory(timeout time.Duration) Renderer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = append(m.timeouts, timeout)
	return m
}

func (m *mockRenderer) Render(ctx context.Context, opts feed.Options) (string, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, opts)
	if m.err != nil {
		return "", 0, m.err
	}
	return m.document, m.items, nil
}

func (m *mockRenderer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func testBlogConfig(name string) *feed.Config {
	return &feed.Config{
		Name:    name,
		URL:     "https://example.org/" + name + "/",
		Keyword: "go",
		Format:  feed.FormatRSS,
		Settings: feed.ConfigSettings{
			Enabled:         true,
			RefreshInterval: 3600,
			Timeout:         15,
		},
	}
}
