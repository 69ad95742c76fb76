package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rdf2rss/app/database"
	"github.com/lysyi3m/rdf2rss/app/feed"
)

// SyncBlogConfigTask registers a blog config in the database so it is listed
// even before its first build.
type SyncBlogConfigTask struct {
	Task
	BlogConfig *feed.Config
	feedRepo   database.FeedRepository
}

func NewSyncBlogConfigTask(blogConfig *feed.Config, feedRepo database.FeedRepository) *SyncBlogConfigTask {
	return &SyncBlogConfigTask{
		Task:       NewTask(TaskTypeSyncBlogConfig, blogConfig.Name),
		BlogConfig: blogConfig,
		feedRepo:   feedRepo,
	}
}

func (t *SyncBlogConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.feedRepo.UpsertFeed(t.BlogConfig.Name, t.BlogConfig.URL, t.BlogConfig.Format)
	if err != nil {
		slog.Error("Task failed", "type", "SyncBlogConfig", "blog", t.BlogName, "error", err)
		return fmt.Errorf("failed to sync blog config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncBlogConfig",
		"blog", t.BlogName,
		"duration", t.GetDuration())

	return nil
}
