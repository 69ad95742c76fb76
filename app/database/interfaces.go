package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(name string) (*Feed, error)
	GetFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(name, url, format string) error
	StoreDocument(name, document string, itemCount int, builtAt, nextBuildAt time.Time) error
	StoreFailure(name, lastError string, nextBuildAt time.Time) error
}
