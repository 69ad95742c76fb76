package database

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "rdf2rss.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected no error on second run, got: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1, got %d", version)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}
}

func TestUpsertAndGetFeed(t *testing.T) {
	repo := NewFeedRepository(openTestDB(t))

	if err := repo.UpsertFeed("blog", "https://example.org/blog/", "rss"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err := repo.GetFeed("blog")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed == nil {
		t.Fatal("Expected feed to exist")
	}
	if feed.URL != "https://example.org/blog/" {
		t.Errorf("Expected url 'https://example.org/blog/', got '%s'", feed.URL)
	}
	if feed.Format != "rss" {
		t.Errorf("Expected format 'rss', got '%s'", feed.Format)
	}
	if feed.IsBuilt() {
		t.Error("Expected new feed not to be built")
	}
	if feed.NextBuildAt != nil {
		t.Errorf("Expected no next build time, got %v", feed.NextBuildAt)
	}

	missing, err := repo.GetFeed("missing")
	if err != nil {
		t.Fatalf("Expected no error for missing feed, got: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing feed, got %+v", missing)
	}
}

func TestStoreDocument(t *testing.T) {
	repo := NewFeedRepository(openTestDB(t))
	builtAt := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	nextBuildAt := builtAt.Add(time.Hour)

	if err := repo.UpsertFeed("blog", "https://example.org/blog/", "rss"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.StoreFailure("blog", "boom", builtAt); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.StoreDocument("blog", "<rss/>", 2, builtAt, nextBuildAt); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err := repo.GetFeed("blog")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !feed.IsBuilt() {
		t.Fatal("Expected feed to be built")
	}
	if feed.Document != "<rss/>" {
		t.Errorf("Expected document '<rss/>', got '%s'", feed.Document)
	}
	if feed.ItemCount != 2 {
		t.Errorf("Expected 2 items, got %d", feed.ItemCount)
	}
	if !feed.BuiltAt.Equal(builtAt) {
		t.Errorf("Expected built_at %v, got %v", builtAt, feed.BuiltAt)
	}
	if feed.NextBuildAt == nil || !feed.NextBuildAt.Equal(nextBuildAt) {
		t.Errorf("Expected next_build_at %v, got %v", nextBuildAt, feed.NextBuildAt)
	}
	if feed.LastError != "" {
		t.Errorf("Expected last error to be cleared, got '%s'", feed.LastError)
	}
}

func TestStoreFailureKeepsDocument(t *testing.T) {
	repo := NewFeedRepository(openTestDB(t))
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	if err := repo.UpsertFeed("blog", "https://example.org/blog/", "rss"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.StoreDocument("blog", "<rss/>", 1, now, now.Add(time.Hour)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.StoreFailure("blog", "failed to load blog", now.Add(2*time.Hour)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err := repo.GetFeed("blog")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed.Document != "<rss/>" {
		t.Errorf("Expected previous document to be kept, got '%s'", feed.Document)
	}
	if feed.LastError != "failed to load blog" {
		t.Errorf("Expected last error 'failed to load blog', got '%s'", feed.LastError)
	}
	if !feed.NextBuildAt.Equal(now.Add(2 * time.Hour)) {
		t.Errorf("Expected next_build_at %v, got %v", now.Add(2*time.Hour), feed.NextBuildAt)
	}
}

func TestStoreUnregisteredFeed(t *testing.T) {
	repo := NewFeedRepository(openTestDB(t))
	now := time.Now()

	if err := repo.StoreDocument("ghost", "<rss/>", 0, now, now); err == nil {
		t.Error("Expected error storing document for unregistered feed")
	}
	if err := repo.StoreFailure("ghost", "boom", now); err == nil {
		t.Error("Expected error storing failure for unregistered feed")
	}
}

func TestUpsertFeedURLChangeResetsSchedule(t *testing.T) {
	repo := NewFeedRepository(openTestDB(t))
	now := time.Now().UTC()

	if err := repo.UpsertFeed("blog", "https://example.org/blog/", "rss"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.StoreDocument("blog", "<rss/>", 0, now, now.Add(time.Hour)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Same settings keep the schedule
	if err := repo.UpsertFeed("blog", "https://example.org/blog/", "rss"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	feed, _ := repo.GetFeed("blog")
	if feed.NextBuildAt == nil {
		t.Error("Expected unchanged config to keep next_build_at")
	}

	if err := repo.UpsertFeed("blog", "https://example.org/other/", "atom"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	feed, _ = repo.GetFeed("blog")
	if feed.NextBuildAt != nil {
		t.Errorf("Expected changed config to reset next_build_at, got %v", feed.NextBuildAt)
	}
	if feed.URL != "https://example.org/other/" || feed.Format != "atom" {
		t.Errorf("Expected updated url and format, got '%s' '%s'", feed.URL, feed.Format)
	}
}

func TestGetFeedsOrderedByName(t *testing.T) {
	repo := NewFeedRepository(openTestDB(t))

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := repo.UpsertFeed(name, "https://example.org/"+name+"/", "rss"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	feeds, err := repo.GetFeeds()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{"alpha", "mid", "zeta"}
	if len(feeds) != len(expected) {
		t.Fatalf("Expected %d feeds, got %d", len(expected), len(feeds))
	}
	for i, name := range expected {
		if feeds[i].Name != name {
			t.Errorf("Expected feed %d to be '%s', got '%s'", i, name, feeds[i].Name)
		}
	}

	count, err := repo.GetFeedCount()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}
}
