package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rdf2rss/app/database"
	"github.com/lysyi3m/rdf2rss/app/feed"
)

// RenderFeedTask runs the feed pipeline for one blog and stores the rendered
// document. A failed build keeps the previous document and records the error.
type RenderFeedTask struct {
	Task
	BlogConfig  *feed.Config
	newRenderer RendererFactory
	feedRepo    database.FeedRepository
	now         func() time.Time
}

func NewRenderFeedTask(blogConfig *feed.Config, newRenderer RendererFactory, feedRepo database.FeedRepository) *RenderFeedTask {
	return &RenderFeedTask{
		Task:        NewTask(TaskTypeRenderFeed, blogConfig.Name),
		BlogConfig:  blogConfig,
		newRenderer: newRenderer,
		feedRepo:    feedRepo,
		now:         time.Now,
	}
}

func (t *RenderFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.BlogConfig.Settings.Enabled {
		slog.Debug("Blog disabled, skipping", "blog", t.BlogName)
		return nil
	}

	// The config may have changed since the last sync
	if err := t.feedRepo.UpsertFeed(t.BlogConfig.Name, t.BlogConfig.URL, t.BlogConfig.Format); err != nil {
		return fmt.Errorf("failed to register blog: %w", err)
	}

	timeout := time.Duration(t.BlogConfig.Settings.Timeout) * time.Second
	renderer := t.newRenderer(timeout)

	document, itemCount, err := renderer.Render(ctx, t.BlogConfig.Options())

	now := t.now().UTC()
	nextBuild := now.Add(time.Duration(t.BlogConfig.Settings.RefreshInterval) * time.Second)

	if err != nil {
		if storeErr := t.feedRepo.StoreFailure(t.BlogName, err.Error(), nextBuild); storeErr != nil {
			slog.Warn("Failed to record build failure", "blog", t.BlogName, "error", storeErr)
		}
		return fmt.Errorf("failed to render feed: %w", err)
	}

	if err := t.feedRepo.StoreDocument(t.BlogName, document, itemCount, now, nextBuild); err != nil {
		return fmt.Errorf("failed to store feed document: %w", err)
	}

	slog.Info("Task completed",
		"type", "RenderFeed",
		"blog", t.BlogName,
		"duration", t.GetDuration(),
		"items", itemCount,
		"next_build_at", nextBuild)

	return nil
}
