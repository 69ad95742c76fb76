package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ FeedRepository = (*FeedRepo)(nil)

const feedColumns = `name, url, format, document, item_count, built_at, next_build_at, last_error, created_at, updated_at`

// FeedRepo stores rendered feeds in SQLite.
type FeedRepo struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepo {
	return &FeedRepo{db: db}
}

// UpsertFeed registers a blog or updates its URL and format. A changed URL
// makes the blog due for an immediate rebuild.
func (r *FeedRepo) UpsertFeed(name, url, format string) error {
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO feeds (name, url, format, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			next_build_at = CASE WHEN feeds.url != excluded.url OR feeds.format != excluded.format THEN NULL ELSE feeds.next_build_at END,
			url = excluded.url,
			format = excluded.format,
			updated_at = excluded.updated_at
	`, name, url, format, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}

	return nil
}

func (r *FeedRepo) StoreDocument(name, document string, itemCount int, builtAt, nextBuildAt time.Time) error {
	res, err := r.db.Exec(`
		UPDATE feeds
		SET document = ?, item_count = ?, built_at = ?, next_build_at = ?, last_error = '', updated_at = ?
		WHERE name = ?
	`, document, itemCount, builtAt.UTC(), nextBuildAt.UTC(), time.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("failed to store feed document: %w", err)
	}

	return expectRow(res, name)
}

// StoreFailure records a failed build. The previously rendered document is
// kept so the feed keeps being served.
func (r *FeedRepo) StoreFailure(name, lastError string, nextBuildAt time.Time) error {
	res, err := r.db.Exec(`
		UPDATE feeds
		SET last_error = ?, next_build_at = ?, updated_at = ?
		WHERE name = ?
	`, lastError, nextBuildAt.UTC(), time.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("failed to store feed failure: %w", err)
	}

	return expectRow(res, name)
}

func (r *FeedRepo) GetFeed(name string) (*Feed, error) {
	row := r.db.QueryRow(`SELECT `+feedColumns+` FROM feeds WHERE name = ?`, name)

	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *FeedRepo) GetFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`SELECT ` + feedColumns + ` FROM feeds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

func (r *FeedRepo) GetFeedCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM feeds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(row scanner) (*Feed, error) {
	var feed Feed
	err := row.Scan(
		&feed.Name, &feed.URL, &feed.Format, &feed.Document, &feed.ItemCount,
		&feed.BuiltAt, &feed.NextBuildAt, &feed.LastError,
		&feed.CreatedAt, &feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

func expectRow(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("feed '%s' is not registered", name)
	}
	return nil
}
